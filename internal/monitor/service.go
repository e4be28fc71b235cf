package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/provider"
	"github.com/pipedeck/pipedeck/models"
)

// Mutation errors. Messages are part of the API surface: the gateway and
// the browser dashboard display them verbatim.
var (
	ErrWorkflowNotFound = errors.New("pipeline or workflow id not found")
	ErrRunNotFound      = errors.New("pipeline or run id not found")
)

const runsPageSize = 10
const commitsPageSize = 10

// Service owns the pipeline cache, repository cache, and metrics buffer.
// It is constructed once by the application entry point and passed by
// handle to every consumer; there is no package-level instance.
//
// Caches are rebuilt wholesale by Refresh. Concurrent Refresh calls are
// not serialized: the mutex protects individual slice swaps, and the last
// refresh to finish wins.
type Service struct {
	p           provider.Provider
	owner       string
	repos       []string
	runsPerRepo int

	mu           sync.RWMutex
	pipelines    []models.Pipeline
	repositories []models.Repository
	metrics      []models.SystemMetrics
	lastRefresh  time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates the Service and starts the background metrics sampler.
// Call Close to stop the sampler; call Refresh to perform the initial load.
func New(cfg *config.Config, p provider.Provider) *Service {
	s := &Service{
		p:           p,
		owner:       cfg.Watch.Owner,
		repos:       append([]string(nil), cfg.Watch.Repos...),
		runsPerRepo: cfg.Watch.RunsPerRepo,
		stop:        make(chan struct{}),
	}
	interval := time.Duration(cfg.Metrics.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go s.runCollector(interval)
	return s
}

// Close stops the metrics sampler. Safe to call more than once.
func (s *Service) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Refresh rebuilds the repository and pipeline caches from the provider,
// one repository at a time. Any fetch failure abandons the partial result
// and installs the fallback dataset instead; the cause is returned so the
// caller can surface it, but the caches are always left usable.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.pipelines = nil
	s.repositories = nil
	s.mu.Unlock()

	for _, repo := range s.repos {
		repoMeta, err := s.p.GetRepository(ctx, s.owner, repo)
		if err != nil {
			return s.installFallback(err)
		}
		s.mu.Lock()
		s.repositories = append(s.repositories, *repoMeta)
		s.mu.Unlock()

		runs, err := s.p.ListWorkflowRuns(ctx, s.owner, repo, runsPageSize)
		if err != nil {
			return s.installFallback(err)
		}
		commits, err := s.p.ListCommits(ctx, s.owner, repo, commitsPageSize)
		if err != nil {
			return s.installFallback(err)
		}

		converted := convertRuns(runs, commits, repo, s.runsPerRepo, time.Now())
		s.mu.Lock()
		s.pipelines = append(s.pipelines, converted...)
		s.mu.Unlock()

		slog.Debug("monitor: refreshed repository",
			"repo", repo, "runs", len(runs), "pipelines", len(converted))
	}

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.mu.Unlock()
	return nil
}

// installFallback discards the partial caches and substitutes the fixed
// fallback dataset. Full replace, not partial success.
func (s *Service) installFallback(cause error) error {
	slog.Error("monitor: refresh failed, installing fallback dataset", "error", cause)
	s.mu.Lock()
	s.pipelines = fallbackPipelines(time.Now())
	s.repositories = nil
	s.lastRefresh = time.Now()
	s.mu.Unlock()
	return fmt.Errorf("refreshing pipeline data: %w", cause)
}

// Pipelines returns the cached pipelines, newest start time first.
func (s *Service) Pipelines() []models.Pipeline {
	s.mu.RLock()
	out := make([]models.Pipeline, len(s.pipelines))
	copy(out, s.pipelines)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

// Repositories returns the cached repository metadata in fetch order.
func (s *Service) Repositories() []models.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Repository, len(s.repositories))
	copy(out, s.repositories)
	return out
}

// CurrentMetrics returns the newest metrics sample, or nil before the first
// tick.
func (s *Service) CurrentMetrics() *models.SystemMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metrics) == 0 {
		return nil
	}
	m := s.metrics[len(s.metrics)-1]
	return &m
}

// MetricsHistory returns buffered samples no older than the given number of
// hours.
func (s *Service) MetricsHistory(hours int) []models.SystemMetrics {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SystemMetrics, 0, len(s.metrics))
	for _, m := range s.metrics {
		if !m.Timestamp.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// LastRefresh reports when a refresh last completed (zero before the first).
func (s *Service) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// PipelineLogs returns the run's log archive when the pipeline carries a
// run id, else a synthesized log transcript. Unknown ids yield a plain
// "not found" string, never an error.
func (s *Service) PipelineLogs(ctx context.Context, id string) string {
	p, ok := s.findPipeline(id)
	if !ok {
		return "pipeline not found"
	}
	if p.RunID != 0 {
		return s.p.WorkflowRunLogs(ctx, s.owner, p.Repository, p.RunID)
	}
	return synthesizeLogs(p)
}

// TriggerPipeline dispatches the pipeline's workflow on its branch. The
// cached status is NOT mutated here: an optimistic transition to "running"
// is the caller's responsibility after a successful return.
func (s *Service) TriggerPipeline(ctx context.Context, id string) error {
	p, ok := s.findPipeline(id)
	if !ok || p.WorkflowID == 0 {
		return ErrWorkflowNotFound
	}
	if err := s.p.TriggerWorkflow(ctx, s.owner, p.Repository, p.WorkflowID, p.Branch); err != nil {
		slog.Error("monitor: failed to trigger pipeline", "pipeline", id, "error", err)
		return err
	}
	return nil
}

// CancelPipeline cancels the pipeline's workflow run. Same status contract
// as TriggerPipeline.
func (s *Service) CancelPipeline(ctx context.Context, id string) error {
	p, ok := s.findPipeline(id)
	if !ok || p.RunID == 0 {
		return ErrRunNotFound
	}
	if err := s.p.CancelWorkflowRun(ctx, s.owner, p.Repository, p.RunID); err != nil {
		slog.Error("monitor: failed to cancel pipeline", "pipeline", id, "error", err)
		return err
	}
	return nil
}

// RerunPipeline re-runs the pipeline's workflow run.
func (s *Service) RerunPipeline(ctx context.Context, id string) error {
	p, ok := s.findPipeline(id)
	if !ok || p.RunID == 0 {
		return ErrRunNotFound
	}
	if err := s.p.RerunWorkflow(ctx, s.owner, p.Repository, p.RunID); err != nil {
		slog.Error("monitor: failed to re-run pipeline", "pipeline", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) findPipeline(id string) (models.Pipeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pipelines {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pipeline{}, false
}
