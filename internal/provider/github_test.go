package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v68/github"
)

// newTestProvider points a GitHub provider at an httptest server.
func newTestProvider(t *testing.T, handler http.Handler) *GitHub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gogithub.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	client.BaseURL = base
	return newWithClient(client)
}

func TestGetRepositoryConvertsFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": 42,
			"name": "web",
			"full_name": "acme/web",
			"description": "frontend",
			"private": false,
			"html_url": "https://github.com/acme/web",
			"default_branch": "main",
			"language": "TypeScript",
			"stargazers_count": 7,
			"forks_count": 3,
			"open_issues_count": 1,
			"owner": {"login": "acme", "avatar_url": "https://example.com/a.png", "html_url": "https://github.com/acme"}
		}`)
	})
	gh := newTestProvider(t, mux)

	repo, err := gh.GetRepository(context.Background(), "acme", "web")
	if err != nil {
		t.Fatalf("GetRepository: %v", err)
	}
	if repo.ID != 42 || repo.Name != "web" || repo.FullName != "acme/web" {
		t.Fatalf("unexpected repository: %+v", repo)
	}
	if repo.Language != "TypeScript" || repo.Stars != 7 || repo.DefaultBranch != "main" {
		t.Fatalf("fields not converted: %+v", repo)
	}
	if repo.Owner.Login != "acme" {
		t.Fatalf("owner = %+v", repo.Owner)
	}
}

func TestGetRepositoryWrapsHTTPErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	gh := newTestProvider(t, mux)

	_, err := gh.GetRepository(context.Background(), "acme", "gone")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := HTTPStatus(err); got != http.StatusNotFound {
		t.Fatalf("HTTPStatus = %d, want 404", got)
	}
}

func TestHTTPStatusForNonHTTPError(t *testing.T) {
	if got := HTTPStatus(fmt.Errorf("plain failure")); got != 0 {
		t.Fatalf("HTTPStatus = %d, want 0", got)
	}
	if got := HTTPStatus(nil); got != 0 {
		t.Fatalf("HTTPStatus(nil) = %d, want 0", got)
	}
}

func TestListWorkflowRuns(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("per_page = %q, want 10", got)
		}
		fmt.Fprint(w, `{
			"total_count": 2,
			"workflow_runs": [
				{"id": 1, "status": "completed", "conclusion": "success", "head_branch": "main"},
				{"id": 2, "status": "in_progress", "head_branch": "feat/x"}
			]
		}`)
	})
	gh := newTestProvider(t, mux)

	runs, err := gh.ListWorkflowRuns(context.Background(), "acme", "web", 0)
	if err != nil {
		t.Fatalf("ListWorkflowRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].GetID() != 1 || runs[1].GetStatus() != "in_progress" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestListCommits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"sha": "abc123def456", "author": {"login": "octocat"}},
			{"sha": "def456abc123", "author": {"login": "hubot"}}
		]`)
	})
	gh := newTestProvider(t, mux)

	commits, err := gh.ListCommits(context.Background(), "acme", "web", 10)
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(commits) != 2 || commits[0].GetSHA() != "abc123def456" {
		t.Fatalf("unexpected commits: %+v", commits)
	}
	if commits[1].GetAuthor().GetLogin() != "hubot" {
		t.Fatalf("author = %q", commits[1].GetAuthor().GetLogin())
	}
}

func TestWorkflowRunLogsDownloadsArchive(t *testing.T) {
	mux := http.NewServeMux()
	var archiveURL string
	mux.HandleFunc("GET /archive", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "line 1\nline 2")
	})
	mux.HandleFunc("GET /repos/acme/web/actions/runs/9/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", archiveURL)
		w.WriteHeader(http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	archiveURL = srv.URL + "/archive"

	client := gogithub.NewClient(srv.Client())
	base, _ := url.Parse(srv.URL + "/")
	client.BaseURL = base
	gh := newWithClient(client)

	logs := gh.WorkflowRunLogs(context.Background(), "acme", "web", 9)
	if logs != "line 1\nline 2" {
		t.Fatalf("logs = %q", logs)
	}
}

func TestWorkflowRunLogsNeverReturnsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/actions/runs/9/logs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	gh := newTestProvider(t, mux)

	logs := gh.WorkflowRunLogs(context.Background(), "acme", "web", 9)
	if !strings.HasPrefix(logs, "failed to fetch logs:") {
		t.Fatalf("logs = %q, want failure description", logs)
	}
}

func TestTriggerWorkflowDefaultsRef(t *testing.T) {
	mux := http.NewServeMux()
	var gotRef string
	mux.HandleFunc("POST /repos/acme/web/actions/workflows/10/dispatches", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Ref string `json:"ref"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode dispatch body: %v", err)
		}
		gotRef = body.Ref
		w.WriteHeader(http.StatusNoContent)
	})
	gh := newTestProvider(t, mux)

	if err := gh.TriggerWorkflow(context.Background(), "acme", "web", 10, ""); err != nil {
		t.Fatalf("TriggerWorkflow: %v", err)
	}
	if gotRef != "main" {
		t.Fatalf("ref = %q, want main", gotRef)
	}
}

func TestCancelWorkflowRunTreatsAcceptedAsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/actions/runs/9/cancel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	gh := newTestProvider(t, mux)

	if err := gh.CancelWorkflowRun(context.Background(), "acme", "web", 9); err != nil {
		t.Fatalf("CancelWorkflowRun: %v", err)
	}
}

func TestRerunWorkflowSurfacesHTTPErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/actions/runs/9/rerun", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "run is not completed"}`)
	})
	gh := newTestProvider(t, mux)

	err := gh.RerunWorkflow(context.Background(), "acme", "web", 9)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := HTTPStatus(err); got != http.StatusForbidden {
		t.Fatalf("HTTPStatus = %d, want 403", got)
	}
}
