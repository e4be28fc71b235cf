package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pipedeck/pipedeck/internal/config"
)

func TestWebhookSignsPayload(t *testing.T) {
	const secret = "topsecret"
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Pipedeck-Signature")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookNotifyConfig{URL: srv.URL, Secret: secret})
	err := ch.Send(context.Background(), Event{
		Type:  "pipeline.failed",
		Title: "pipeline failed: CI",
		Body:  "branch main",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if !strings.HasPrefix(gotSig, "sha256=") {
		t.Fatalf("signature header = %q", gotSig)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Fatalf("signature mismatch: got %q, want %q", gotSig, want)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload["type"] != "pipeline.failed" || payload["title"] != "pipeline failed: CI" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestWebhookOmitsSignatureWithoutSecret(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Pipedeck-Signature")
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookNotifyConfig{URL: srv.URL})
	if err := ch.Send(context.Background(), Event{Type: "refresh.failed"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotSig != "" {
		t.Fatalf("unexpected signature header %q", gotSig)
	}
}

func TestWebhookReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := NewWebhook(config.WebhookNotifyConfig{URL: srv.URL})
	if err := ch.Send(context.Background(), Event{Type: "pipeline.failed"}); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestSlackAttachmentShape(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	ch := NewSlack(config.SlackNotifyConfig{WebhookURL: srv.URL})
	err := ch.Send(context.Background(), Event{
		Type:  "pipeline.failed",
		Title: "pipeline failed: CI",
		Body:  "branch main, commit abc123d",
		URL:   "https://github.com/acme/web/actions/runs/1",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	var payload struct {
		Text        string `json:"text"`
		Attachments []struct {
			Color     string `json:"color"`
			Title     string `json:"title"`
			TitleLink string `json:"title_link"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Text != "pipeline failed: CI" || len(payload.Attachments) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Attachments[0].Color != "#EF4444" {
		t.Fatalf("failure color = %q", payload.Attachments[0].Color)
	}
	if payload.Attachments[0].TitleLink == "" {
		t.Fatal("title_link missing")
	}
}

func TestDispatcherFiltersEventTypes(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	// Default event set: pipeline.failed and refresh.failed only.
	d := NewDispatcher(config.NotifyConfig{
		Webhook: config.WebhookNotifyConfig{URL: srv.URL},
	})
	if !d.IsAnyConfigured() {
		t.Fatal("webhook channel should be configured")
	}

	d.Notify(context.Background(), Event{Type: "refresh.completed"})
	if calls != 0 {
		t.Fatal("refresh.completed must be filtered by default")
	}
	d.Notify(context.Background(), Event{Type: "pipeline.failed"})
	if calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", calls)
	}
}

func TestDispatcherHonoursConfiguredEvents(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	d := NewDispatcher(config.NotifyConfig{
		Webhook: config.WebhookNotifyConfig{URL: srv.URL},
		Events:  []string{"refresh.completed"},
	})

	d.Notify(context.Background(), Event{Type: "pipeline.failed"})
	d.Notify(context.Background(), Event{Type: "refresh.completed"})
	if calls != 1 {
		t.Fatalf("expected only refresh.completed to deliver, got %d calls", calls)
	}
}

func TestDispatcherWithNoChannels(t *testing.T) {
	d := NewDispatcher(config.NotifyConfig{})
	if d.IsAnyConfigured() {
		t.Fatal("no channels should be configured")
	}
	// Must be a no-op, not a panic.
	d.Notify(context.Background(), Event{Type: "pipeline.failed"})
}
