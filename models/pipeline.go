package models

import "time"

// PipelineStatus is the normalized state of one CI run.
type PipelineStatus string

const (
	StatusRunning PipelineStatus = "running"
	StatusSuccess PipelineStatus = "success"
	StatusFailed  PipelineStatus = "failed"
	StatusPending PipelineStatus = "pending"
)

// StageStatus is the state of a single pipeline stage. Stages additionally
// know "skipped", which pipelines themselves never report.
type StageStatus string

const (
	StageRunning StageStatus = "running"
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
	StagePending StageStatus = "pending"
	StageSkipped StageStatus = "skipped"
)

// Pipeline is the normalized representation of one GitHub Actions workflow
// run. Pipelines are rebuilt wholesale on every refresh; they are never
// partially merged.
type Pipeline struct {
	// ID is "<repo>-<run id>", unique within the cache.
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Status PipelineStatus `json:"status" yaml:"status"`
	Branch string         `json:"branch" yaml:"branch"`
	// Commit is the short (7 character) head SHA.
	Commit       string `json:"commit" yaml:"commit"`
	Author       string `json:"author" yaml:"author"`
	AuthorAvatar string `json:"author_avatar" yaml:"author_avatar"`
	// Duration is wall-clock seconds from run start to last update.
	Duration    int             `json:"duration" yaml:"duration"`
	StartTime   time.Time       `json:"start_time" yaml:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Repository  string          `json:"repository" yaml:"repository"`
	WorkflowURL string          `json:"workflow_url" yaml:"workflow_url"`
	WorkflowID  int64           `json:"workflow_id,omitempty" yaml:"workflow_id,omitempty"`
	RunID       int64           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Stages      []PipelineStage `json:"stages" yaml:"stages"`
}

// PipelineStage is one synthesized phase of a pipeline. Every pipeline has
// exactly three stages in a fixed order: build & test, e2e test, deploy.
type PipelineStage struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Status    StageStatus `json:"status" yaml:"status"`
	Duration  int         `json:"duration" yaml:"duration"`
	StartTime *time.Time  `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty" yaml:"end_time,omitempty"`
}
