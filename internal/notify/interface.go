package notify

import "context"

// Event represents a notification event from the dashboard.
type Event struct {
	Type       string // "pipeline.failed" | "refresh.failed" | "refresh.completed"
	Title      string
	Body       string
	URL        string // optional deep link (workflow run page, gateway UI)
	Pipeline   string // pipeline id, when the event concerns one
	Repository string // "owner/repo"
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
