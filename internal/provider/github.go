package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/models"
)

const userAgent = "pipedeck/1.0"

// GitHub implements Provider against the GitHub REST API (v3) using
// google/go-github. A missing token yields an unauthenticated client,
// subject to GitHub's lower anonymous rate limit.
type GitHub struct {
	client *gogithub.Client
	// logHTTP fetches the resolved log-archive URL. Separate from the API
	// client because the archive lives on a signed storage URL, not the API
	// host.
	logHTTP *http.Client
}

// NewGitHub creates a GitHub provider from the given configuration.
func NewGitHub(cfg config.GitHubConfig) (*GitHub, error) {
	httpClient := http.DefaultClient
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	client := gogithub.NewClient(httpClient)
	client.UserAgent = userAgent

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.Host != "" && cfg.Host != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", cfg.Host)
		upload := fmt.Sprintf("https://%s/api/uploads/", cfg.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}

	return newWithClient(client), nil
}

// newWithClient wires a provider around an already-built API client.
// Used by tests to point the client at an httptest server.
func newWithClient(client *gogithub.Client) *GitHub {
	return &GitHub{
		client:  client,
		logHTTP: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GitHub) GetRepository(ctx context.Context, owner, repo string) (*models.Repository, error) {
	r, _, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("getting repository %s/%s: %w", owner, repo, err)
	}
	out := convertRepository(r)
	return &out, nil
}

func (g *GitHub) ListRepositories(ctx context.Context, owner string) ([]models.Repository, error) {
	ghRepos, _, err := g.client.Repositories.ListByUser(ctx, owner, &gogithub.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gogithub.ListOptions{PerPage: 10},
	})
	if err != nil {
		return nil, fmt.Errorf("listing repositories for %s: %w", owner, err)
	}
	repos := make([]models.Repository, 0, len(ghRepos))
	for _, r := range ghRepos {
		if r == nil {
			continue
		}
		repos = append(repos, convertRepository(r))
	}
	return repos, nil
}

func (g *GitHub) ListWorkflowRuns(ctx context.Context, owner, repo string, perPage int) ([]*gogithub.WorkflowRun, error) {
	if perPage <= 0 {
		perPage = 10
	}
	runs, _, err := g.client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, &gogithub.ListWorkflowRunsOptions{
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("listing workflow runs for %s/%s: %w", owner, repo, err)
	}
	return runs.WorkflowRuns, nil
}

func (g *GitHub) ListCommits(ctx context.Context, owner, repo string, perPage int) ([]*gogithub.RepositoryCommit, error) {
	if perPage <= 0 {
		perPage = 10
	}
	commits, _, err := g.client.Repositories.ListCommits(ctx, owner, repo, &gogithub.CommitsListOptions{
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits for %s/%s: %w", owner, repo, err)
	}
	return commits, nil
}

// WorkflowRunLogs resolves the log-archive redirect and downloads it.
// Failures are converted to a readable string: logs are best-effort and
// must never break the caller's page.
func (g *GitHub) WorkflowRunLogs(ctx context.Context, owner, repo string, runID int64) string {
	logURL, _, err := g.client.Actions.GetWorkflowRunLogs(ctx, owner, repo, runID, 4)
	if err != nil {
		return fmt.Sprintf("failed to fetch logs: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL.String(), nil)
	if err != nil {
		return fmt.Sprintf("failed to fetch logs: %v", err)
	}
	resp, err := g.logHTTP.Do(req)
	if err != nil {
		return fmt.Sprintf("failed to fetch logs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Sprintf("failed to fetch logs: archive endpoint returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("failed to fetch logs: %v", err)
	}
	return string(body)
}

func (g *GitHub) TriggerWorkflow(ctx context.Context, owner, repo string, workflowID int64, ref string) error {
	if ref == "" {
		ref = "main"
	}
	_, err := g.client.Actions.CreateWorkflowDispatchEventByID(ctx, owner, repo, workflowID,
		gogithub.CreateWorkflowDispatchEventRequest{Ref: ref})
	if err != nil {
		return fmt.Errorf("triggering workflow %d on %s/%s: %w", workflowID, owner, repo, err)
	}
	return nil
}

func (g *GitHub) CancelWorkflowRun(ctx context.Context, owner, repo string, runID int64) error {
	_, err := g.client.Actions.CancelWorkflowRunByID(ctx, owner, repo, runID)
	// GitHub answers 202 Accepted; go-github surfaces that as AcceptedError.
	if _, accepted := err.(*gogithub.AcceptedError); accepted {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cancelling workflow run %d on %s/%s: %w", runID, owner, repo, err)
	}
	return nil
}

func (g *GitHub) RerunWorkflow(ctx context.Context, owner, repo string, runID int64) error {
	_, err := g.client.Actions.RerunWorkflowByID(ctx, owner, repo, runID)
	if _, accepted := err.(*gogithub.AcceptedError); accepted {
		return nil
	}
	if err != nil {
		return fmt.Errorf("re-running workflow run %d on %s/%s: %w", runID, owner, repo, err)
	}
	return nil
}

func convertRepository(r *gogithub.Repository) models.Repository {
	return models.Repository{
		ID:            r.GetID(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Private:       r.GetPrivate(),
		HTMLURL:       r.GetHTMLURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		PushedAt:      r.GetPushedAt().Time,
		Owner: models.RepoOwner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
			HTMLURL:   r.GetOwner().GetHTMLURL(),
		},
	}
}
