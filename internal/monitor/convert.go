package monitor

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/pipedeck/pipedeck/models"
)

// stageSpec fixes the synthetic stage breakdown: three phases whose relative
// time weights sum to 1.0.
type stageSpec struct {
	id     string
	name   string
	weight float64
}

var stageSpecs = []stageSpec{
	{id: "build-test", name: "Build & Test", weight: 0.4},
	{id: "e2e-test", name: "E2E Test", weight: 0.4},
	{id: "deploy", name: "Deploy", weight: 0.2},
}

// mapRunStatus normalizes GitHub's status/conclusion pair into the internal
// pipeline status.
//
//	in_progress|queued, *        → running
//	completed, success           → success
//	completed, failure|cancelled → failed
//	anything else                → pending
func mapRunStatus(status, conclusion string) models.PipelineStatus {
	if status == "in_progress" || status == "queued" {
		return models.StatusRunning
	}
	if status == "completed" {
		switch conclusion {
		case "success":
			return models.StatusSuccess
		case "failure", "cancelled":
			return models.StatusFailed
		}
	}
	return models.StatusPending
}

// stageStatus derives one stage's status from the parent pipeline status and
// the stage's ordinal position.
func stageStatus(pipeline models.PipelineStatus, index, total int) models.StageStatus {
	switch pipeline {
	case models.StatusSuccess:
		return models.StageSuccess
	case models.StatusFailed:
		// Failure always surfaces at the final recorded stage.
		if index < total-1 {
			return models.StageSuccess
		}
		return models.StageFailed
	case models.StatusRunning:
		switch index {
		case 0:
			return models.StageSuccess
		case 1:
			return models.StageRunning
		default:
			return models.StagePending
		}
	}
	return models.StagePending
}

// synthesizeStages builds the fixed three-stage breakdown for a pipeline.
// Stage durations are floor(total × weight), zeroed for pending stages, and
// timestamps are back-computed from now so the stages form a contiguous
// timeline ending at now.
func synthesizeStages(status models.PipelineStatus, totalDuration int, now time.Time) []models.PipelineStage {
	stages := make([]models.PipelineStage, 0, len(stageSpecs))
	elapsed := 0
	for i, spec := range stageSpecs {
		stageDuration := int(float64(totalDuration) * spec.weight)
		st := stageStatus(status, i, len(stageSpecs))

		start := now.Add(-time.Duration(totalDuration-elapsed) * time.Second)
		stage := models.PipelineStage{
			ID:        spec.id,
			Name:      spec.name,
			Status:    st,
			Duration:  stageDuration,
			StartTime: &start,
		}
		if st == models.StagePending {
			stage.Duration = 0
		}
		if st != models.StageRunning && st != models.StagePending {
			end := now.Add(-time.Duration(totalDuration-elapsed-stageDuration) * time.Second)
			stage.EndTime = &end
		}

		elapsed += stageDuration
		stages = append(stages, stage)
	}
	return stages
}

// convertRuns normalizes up to limit workflow runs into pipelines, matching
// each run against the commit list by 7-character SHA prefix.
func convertRuns(runs []*gogithub.WorkflowRun, commits []*gogithub.RepositoryCommit, repo string, limit int, now time.Time) []models.Pipeline {
	if limit <= 0 {
		limit = 5
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	pipelines := make([]models.Pipeline, 0, len(runs))
	for _, run := range runs {
		if run == nil {
			continue
		}
		pipelines = append(pipelines, convertRun(run, commits, repo, now))
	}
	return pipelines
}

func convertRun(run *gogithub.WorkflowRun, commits []*gogithub.RepositoryCommit, repo string, now time.Time) models.Pipeline {
	shortSHA := run.GetHeadSHA()
	if len(shortSHA) > 7 {
		shortSHA = shortSHA[:7]
	}

	status := mapRunStatus(run.GetStatus(), run.GetConclusion())
	duration := runDuration(run)

	name := run.GetName()
	if name == "" {
		name = fmt.Sprintf("%s workflow", repo)
	}
	branch := run.GetHeadBranch()
	if branch == "" {
		branch = "main"
	}

	start := run.GetRunStartedAt().Time
	if start.IsZero() {
		start = run.GetCreatedAt().Time
	}

	p := models.Pipeline{
		ID:           fmt.Sprintf("%s-%d", repo, run.GetID()),
		Name:         name,
		Status:       status,
		Branch:       branch,
		Commit:       shortSHA,
		Author:       run.GetActor().GetLogin(),
		AuthorAvatar: run.GetActor().GetAvatarURL(),
		Duration:     duration,
		StartTime:    start,
		Repository:   repo,
		WorkflowURL:  run.GetHTMLURL(),
		WorkflowID:   run.GetWorkflowID(),
		RunID:        run.GetID(),
		Stages:       synthesizeStages(status, duration, now),
	}
	if updated := run.GetUpdatedAt().Time; !updated.IsZero() {
		p.EndTime = &updated
	}

	// Prefer the matching commit's author over the run actor. The prefix
	// match is a heuristic: with no match the first commit is assumed, and
	// an empty commit list keeps the actor.
	if c := matchCommit(commits, shortSHA); c != nil && c.GetAuthor() != nil {
		p.Author = c.GetAuthor().GetLogin()
		p.AuthorAvatar = c.GetAuthor().GetAvatarURL()
	}
	return p
}

// matchCommit finds the commit whose SHA starts with shortSHA, falling back
// to the first commit in the list. Returns nil for an empty list.
func matchCommit(commits []*gogithub.RepositoryCommit, shortSHA string) *gogithub.RepositoryCommit {
	for _, c := range commits {
		if c != nil && shortSHA != "" && strings.HasPrefix(c.GetSHA(), shortSHA) {
			return c
		}
	}
	if len(commits) > 0 {
		return commits[0]
	}
	return nil
}

// runDuration is updated_at − run_started_at in whole seconds when both
// timestamps exist, else a random placeholder in [60, 660).
func runDuration(run *gogithub.WorkflowRun) int {
	started := run.GetRunStartedAt().Time
	updated := run.GetUpdatedAt().Time
	if !started.IsZero() && !updated.IsZero() {
		d := int(updated.Sub(started).Seconds())
		if d < 0 {
			d = 0
		}
		return d
	}
	return rand.IntN(600) + 60
}
