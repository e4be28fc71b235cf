package monitor

import (
	"testing"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/pipedeck/pipedeck/models"
)

func ptr[T any](v T) *T { return &v }

func makeRun(id int64, status, conclusion, branch, sha string) *gogithub.WorkflowRun {
	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	updated := started.Add(5 * time.Minute)
	return &gogithub.WorkflowRun{
		ID:           ptr(id),
		Name:         ptr("CI"),
		Status:       ptr(status),
		Conclusion:   ptr(conclusion),
		HeadBranch:   ptr(branch),
		HeadSHA:      ptr(sha),
		WorkflowID:   ptr(id * 10),
		HTMLURL:      ptr("https://github.com/acme/web/actions/runs/1"),
		RunStartedAt: &gogithub.Timestamp{Time: started},
		UpdatedAt:    &gogithub.Timestamp{Time: updated},
		CreatedAt:    &gogithub.Timestamp{Time: started},
		Actor:        &gogithub.User{Login: ptr("actor"), AvatarURL: ptr("https://example.com/actor.png")},
	}
}

func TestMapRunStatus(t *testing.T) {
	cases := []struct {
		status, conclusion string
		want               models.PipelineStatus
	}{
		{"in_progress", "", models.StatusRunning},
		{"queued", "", models.StatusRunning},
		{"in_progress", "failure", models.StatusRunning},
		{"completed", "success", models.StatusSuccess},
		{"completed", "failure", models.StatusFailed},
		{"completed", "cancelled", models.StatusFailed},
		{"completed", "skipped", models.StatusPending},
		{"completed", "", models.StatusPending},
		{"waiting", "", models.StatusPending},
		{"", "", models.StatusPending},
	}
	for _, tc := range cases {
		if got := mapRunStatus(tc.status, tc.conclusion); got != tc.want {
			t.Fatalf("mapRunStatus(%q, %q) = %q, want %q", tc.status, tc.conclusion, got, tc.want)
		}
	}
}

func TestSynthesizeStagesSuccess(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	stages := synthesizeStages(models.StatusSuccess, 300, now)

	if len(stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(stages))
	}
	wantIDs := []string{"build-test", "e2e-test", "deploy"}
	wantDur := []int{120, 120, 60}
	for i, st := range stages {
		if st.ID != wantIDs[i] {
			t.Fatalf("stage %d id = %q, want %q", i, st.ID, wantIDs[i])
		}
		if st.Status != models.StageSuccess {
			t.Fatalf("stage %d status = %q, want success", i, st.Status)
		}
		if st.Duration != wantDur[i] {
			t.Fatalf("stage %d duration = %d, want %d", i, st.Duration, wantDur[i])
		}
		if st.StartTime == nil || st.EndTime == nil {
			t.Fatalf("stage %d missing timestamps", i)
		}
	}

	// Stages form a contiguous timeline ending at now.
	if !stages[0].StartTime.Equal(now.Add(-300 * time.Second)) {
		t.Fatalf("first stage starts at %v, want now-300s", stages[0].StartTime)
	}
	for i := 1; i < len(stages); i++ {
		if !stages[i].StartTime.Equal(*stages[i-1].EndTime) {
			t.Fatalf("stage %d start %v != stage %d end %v", i, stages[i].StartTime, i-1, stages[i-1].EndTime)
		}
	}
	if !stages[2].EndTime.Equal(now) {
		t.Fatalf("last stage ends at %v, want %v", stages[2].EndTime, now)
	}
}

func TestSynthesizeStagesFailedSurfacesAtLastStage(t *testing.T) {
	now := time.Now()
	stages := synthesizeStages(models.StatusFailed, 100, now)
	want := []models.StageStatus{models.StageSuccess, models.StageSuccess, models.StageFailed}
	for i, st := range stages {
		if st.Status != want[i] {
			t.Fatalf("stage %d status = %q, want %q", i, st.Status, want[i])
		}
	}
}

func TestSynthesizeStagesRunning(t *testing.T) {
	now := time.Now()
	stages := synthesizeStages(models.StatusRunning, 100, now)
	want := []models.StageStatus{models.StageSuccess, models.StageRunning, models.StagePending}
	for i, st := range stages {
		if st.Status != want[i] {
			t.Fatalf("stage %d status = %q, want %q", i, st.Status, want[i])
		}
	}
	if stages[1].EndTime != nil {
		t.Fatal("running stage must not carry an end time")
	}
	if stages[2].Duration != 0 {
		t.Fatalf("pending stage duration = %d, want 0", stages[2].Duration)
	}
}

func TestSynthesizeStagesPendingHasZeroDurations(t *testing.T) {
	stages := synthesizeStages(models.StatusPending, 500, time.Now())
	for i, st := range stages {
		if st.Status != models.StagePending {
			t.Fatalf("stage %d status = %q, want pending", i, st.Status)
		}
		if st.Duration != 0 {
			t.Fatalf("stage %d duration = %d, want 0", i, st.Duration)
		}
	}
}

func TestStageDurationsNeverExceedTotal(t *testing.T) {
	for _, total := range []int{0, 1, 7, 59, 300, 661, 3600} {
		stages := synthesizeStages(models.StatusSuccess, total, time.Now())
		sum := 0
		for _, st := range stages {
			sum += st.Duration
		}
		if sum > total {
			t.Fatalf("total %d: stage durations sum to %d", total, sum)
		}
	}
}

func TestConvertRunBasics(t *testing.T) {
	now := time.Now()
	run := makeRun(42, "completed", "success", "main", "abc123def4567890")
	p := convertRun(run, nil, "web", now)

	if p.ID != "web-42" {
		t.Fatalf("id = %q, want web-42", p.ID)
	}
	if p.Status != models.StatusSuccess {
		t.Fatalf("status = %q, want success", p.Status)
	}
	if p.Commit != "abc123d" {
		t.Fatalf("commit = %q, want abc123d", p.Commit)
	}
	if p.Branch != "main" {
		t.Fatalf("branch = %q, want main", p.Branch)
	}
	if p.Duration != 300 {
		t.Fatalf("duration = %d, want 300", p.Duration)
	}
	if p.Author != "actor" {
		t.Fatalf("author = %q, want actor (no commits to match)", p.Author)
	}
	if p.WorkflowID != 420 || p.RunID != 42 {
		t.Fatalf("workflow/run ids = %d/%d", p.WorkflowID, p.RunID)
	}
	if len(p.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(p.Stages))
	}
}

func TestConvertRunPrefersMatchingCommitAuthor(t *testing.T) {
	run := makeRun(1, "completed", "success", "main", "abc123def4567890")
	commits := []*gogithub.RepositoryCommit{
		{SHA: ptr("zzz999"), Author: &gogithub.User{Login: ptr("other")}},
		{SHA: ptr("abc123def4567890"), Author: &gogithub.User{Login: ptr("committer")}},
	}
	p := convertRun(run, commits, "web", time.Now())
	if p.Author != "committer" {
		t.Fatalf("author = %q, want committer", p.Author)
	}
}

func TestConvertRunFallsBackToFirstCommit(t *testing.T) {
	run := makeRun(1, "completed", "success", "main", "ffffffff00000000")
	commits := []*gogithub.RepositoryCommit{
		{SHA: ptr("abc123"), Author: &gogithub.User{Login: ptr("first")}},
		{SHA: ptr("def456"), Author: &gogithub.User{Login: ptr("second")}},
	}
	p := convertRun(run, commits, "web", time.Now())
	if p.Author != "first" {
		t.Fatalf("author = %q, want first", p.Author)
	}
}

func TestConvertRunKeepsActorWhenCommitHasNoAuthor(t *testing.T) {
	run := makeRun(1, "completed", "success", "main", "abc123def4567890")
	commits := []*gogithub.RepositoryCommit{
		{SHA: ptr("abc123def4567890")},
	}
	p := convertRun(run, commits, "web", time.Now())
	if p.Author != "actor" {
		t.Fatalf("author = %q, want actor", p.Author)
	}
}

func TestConvertRunDefaults(t *testing.T) {
	run := &gogithub.WorkflowRun{ID: ptr(int64(7))}
	p := convertRun(run, nil, "web", time.Now())
	if p.Name != "web workflow" {
		t.Fatalf("name = %q, want \"web workflow\"", p.Name)
	}
	if p.Branch != "main" {
		t.Fatalf("branch = %q, want main", p.Branch)
	}
	// No timestamps at all: a random placeholder in [60, 660).
	if p.Duration < 60 || p.Duration >= 660 {
		t.Fatalf("placeholder duration %d outside [60, 660)", p.Duration)
	}
}

func TestConvertRunsAppliesLimit(t *testing.T) {
	runs := make([]*gogithub.WorkflowRun, 0, 8)
	for i := int64(1); i <= 8; i++ {
		runs = append(runs, makeRun(i, "completed", "success", "main", "abc"))
	}
	got := convertRuns(runs, nil, "web", 5, time.Now())
	if len(got) != 5 {
		t.Fatalf("expected 5 pipelines, got %d", len(got))
	}

	// Zero limit falls back to 5; nil entries are skipped.
	runs[2] = nil
	got = convertRuns(runs, nil, "web", 0, time.Now())
	if len(got) != 4 {
		t.Fatalf("expected 4 pipelines with a nil run, got %d", len(got))
	}
}

func TestRunDurationClampsNegative(t *testing.T) {
	started := time.Now()
	run := &gogithub.WorkflowRun{
		RunStartedAt: &gogithub.Timestamp{Time: started},
		UpdatedAt:    &gogithub.Timestamp{Time: started.Add(-time.Minute)},
	}
	if d := runDuration(run); d != 0 {
		t.Fatalf("negative duration not clamped: %d", d)
	}
}
