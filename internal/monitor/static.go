package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/pipedeck/pipedeck/models"
)

// fallbackPipelines is the fixed dataset substituted when a refresh fails
// entirely: a single synthetic main-branch pipeline mid-run.
func fallbackPipelines(now time.Time) []models.Pipeline {
	return []models.Pipeline{
		{
			ID:           "main-pipeline-1",
			Name:         "Main Pipeline",
			Status:       models.StatusRunning,
			Branch:       "main",
			Commit:       "a1b2c3d",
			Author:       "developer",
			AuthorAvatar: "/placeholder.svg?height=32&width=32",
			Duration:     0,
			StartTime:    now,
			Repository:   "sample-project",
			WorkflowURL:  "#",
			Stages: []models.PipelineStage{
				{ID: "build-test", Name: "Build & Test", Status: models.StageSuccess, Duration: 120},
				{ID: "e2e-test", Name: "E2E Test", Status: models.StageRunning, Duration: 0},
				{ID: "deploy", Name: "Deploy", Status: models.StagePending, Duration: 0},
			},
		},
	}
}

// TestResults returns a fixed sample set documenting the expected result
// shape. Not derived from any live source.
func (s *Service) TestResults() []models.TestResult {
	return []models.TestResult{
		{Name: "user service test", Status: "passed", Duration: 2.3, Suite: "JUnit"},
		{Name: "task controller test", Status: "passed", Duration: 1.8, Suite: "JUnit"},
		{Name: "database integration test", Status: "failed", Duration: 5.2, Error: "connection timeout", Suite: "JUnit"},
		{Name: "login flow", Status: "passed", Duration: 12.5, Suite: "Playwright"},
		{Name: "task management", Status: "passed", Duration: 18.3, Suite: "Playwright"},
		{Name: "user registration", Status: "failed", Duration: 8.1, Error: "element not found: #submit-button", Suite: "Playwright"},
	}
}

// DeploymentEnvironments returns the fixed environment inventory.
func (s *Service) DeploymentEnvironments() []models.DeploymentEnvironment {
	return []models.DeploymentEnvironment{
		{
			Name: "production", Status: "healthy", Version: "v2.1.3",
			Uptime: "99.9%", LastDeploy: "2 hours ago",
			URL:       "https://production.example.com",
			Resources: models.EnvResources{CPU: 45, Memory: 62, Disk: 78},
		},
		{
			Name: "staging", Status: "warning", Version: "v2.2.0-rc1",
			Uptime: "98.5%", LastDeploy: "30 minutes ago",
			URL:       "https://staging.example.com",
			Resources: models.EnvResources{CPU: 78, Memory: 85, Disk: 65},
		},
		{
			Name: "development", Status: "healthy", Version: "v2.2.0-dev",
			Uptime: "97.2%", LastDeploy: "5 minutes ago",
			URL:       "https://dev.example.com",
			Resources: models.EnvResources{CPU: 32, Memory: 48, Disk: 55},
		},
	}
}

// synthesizeLogs fabricates a plausible transcript for pipelines that have
// no provider run id to fetch real logs from.
func synthesizeLogs(p models.Pipeline) string {
	var b strings.Builder
	ts := p.StartTime.Format("2006-01-02 15:04:05")
	fmt.Fprintf(&b, "[%s] pipeline started: %s\n", ts, p.Name)
	fmt.Fprintf(&b, "[%s] branch: %s\n", ts, p.Branch)
	fmt.Fprintf(&b, "[%s] commit: %s\n", ts, p.Commit)
	fmt.Fprintf(&b, "[%s] installing dependencies...\n", ts)
	fmt.Fprintf(&b, "[%s] build started...\n", ts)
	fmt.Fprintf(&b, "[%s] running tests...\n", ts)
	fmt.Fprintf(&b, "[%s] e2e tests started...\n", ts)
	switch p.Status {
	case models.StatusFailed:
		fmt.Fprintf(&b, "[%s] error: tests failed\n", ts)
	case models.StatusSuccess:
		fmt.Fprintf(&b, "[%s] deploy completed\n", ts)
	}
	return strings.TrimRight(b.String(), "\n")
}
