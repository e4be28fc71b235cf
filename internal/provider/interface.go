package provider

import (
	"context"
	"errors"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/pipedeck/pipedeck/models"
)

// Provider abstracts the CI provider's REST API. The only implementation is
// GitHub Actions; the interface exists so the aggregation service and the
// gateway can be tested against a fake.
type Provider interface {
	// GetRepository returns metadata for a single repository.
	GetRepository(ctx context.Context, owner, repo string) (*models.Repository, error)

	// ListRepositories returns up to 10 of the owner's repositories,
	// most recently updated first.
	ListRepositories(ctx context.Context, owner string) ([]models.Repository, error)

	// ListWorkflowRuns returns the repository's most recent workflow runs.
	ListWorkflowRuns(ctx context.Context, owner, repo string, perPage int) ([]*gogithub.WorkflowRun, error)

	// ListCommits returns the repository's most recent commits.
	ListCommits(ctx context.Context, owner, repo string, perPage int) ([]*gogithub.RepositoryCommit, error)

	// WorkflowRunLogs downloads the run's log archive. Logs are best-effort:
	// on any failure the returned string describes the problem, no error is
	// ever raised.
	WorkflowRunLogs(ctx context.Context, owner, repo string, runID int64) string

	// TriggerWorkflow dispatches the workflow on ref ("main" when empty).
	TriggerWorkflow(ctx context.Context, owner, repo string, workflowID int64, ref string) error

	// CancelWorkflowRun cancels an in-progress run.
	CancelWorkflowRun(ctx context.Context, owner, repo string, runID int64) error

	// RerunWorkflow re-runs a completed run.
	RerunWorkflow(ctx context.Context, owner, repo string, runID int64) error
}

// HTTPStatus extracts the HTTP status code from a provider error chain.
// Returns 0 when the error did not come from an HTTP response.
func HTTPStatus(err error) int {
	var er *gogithub.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode
	}
	return 0
}
