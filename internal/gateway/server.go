package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pipedeck/pipedeck/internal/config"
	"github.com/pipedeck/pipedeck/internal/monitor"
	"github.com/pipedeck/pipedeck/internal/notify"
	"github.com/pipedeck/pipedeck/models"
)

// Gateway is the long-running daemon that combines:
//   - the aggregation service (pipeline/repository caches, metrics buffer)
//   - a cron Scheduler (refreshing the caches on schedule)
//   - a REST + SSE HTTP server (data plane for the browser dashboard)
type Gateway struct {
	cfg         *config.Config
	svc         *monitor.Service
	broadcaster *Broadcaster
	scheduler   *Scheduler
	notifier    *notify.Dispatcher
	startedAt   time.Time

	mu sync.Mutex
	// alertedRuns tracks failed pipeline ids already notified, so a repeat
	// refresh does not re-alert the same run.
	alertedRuns map[string]bool
}

// New creates a Gateway. Call Start() to begin serving.
func New(cfg *config.Config, svc *monitor.Service, notifier *notify.Dispatcher) *Gateway {
	return &Gateway{
		cfg:         cfg,
		svc:         svc,
		broadcaster: newBroadcaster(),
		scheduler:   newScheduler(),
		notifier:    notifier,
		startedAt:   time.Now(),
		alertedRuns: make(map[string]bool),
	}
}

// Start runs the gateway until ctx is cancelled. It:
//  1. Starts the cron scheduler for background refreshes
//  2. Performs the initial cache load in a background goroutine
//  3. Starts a stats ticker that pushes status + metrics every 5s via SSE
//  4. Binds the HTTP server (blocks until shutdown)
func (gw *Gateway) Start(ctx context.Context) error {
	port := gw.cfg.Gateway.Port
	if port == 0 {
		port = 6270
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	schedule := gw.cfg.Gateway.RefreshSchedule
	if schedule == "" {
		schedule = "@every 5m"
	}
	if err := gw.scheduler.Start(schedule, func() { gw.refresh(context.Background()) }); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	go gw.refresh(ctx)
	go gw.runStatsTicker(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: buildHandler(gw),
	}

	// Shut down HTTP server when ctx is cancelled.
	go func() {
		<-ctx.Done()
		gw.scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("gateway: listening", "addr", "http://"+addr, "refresh", schedule)
	gw.broadcaster.send(SSEEvent{
		Type:    "gateway.started",
		Payload: map[string]string{"addr": "http://" + addr},
	})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// refresh reloads the caches, broadcasts progress over SSE, and raises
// notifications for newly failed pipelines. Refreshes are not serialized:
// overlapping runs are last-write-wins, matching the service's contract.
func (gw *Gateway) refresh(ctx context.Context) {
	gw.broadcaster.send(SSEEvent{Type: "refresh.started"})
	if err := gw.svc.Refresh(ctx); err != nil {
		slog.Warn("gateway: refresh failed, fallback dataset active", "error", err)
		gw.broadcaster.send(SSEEvent{Type: "refresh.failed", Payload: map[string]string{"error": err.Error()}})
		gw.notifier.Notify(ctx, notify.Event{
			Type:  "refresh.failed",
			Title: "pipeline refresh failed",
			Body:  err.Error(),
		})
		return
	}

	pipelines := gw.svc.Pipelines()
	gw.broadcaster.send(SSEEvent{Type: "refresh.completed", Payload: map[string]int{"pipelines": len(pipelines)}})
	gw.notifier.Notify(ctx, notify.Event{
		Type:  "refresh.completed",
		Title: "pipeline refresh completed",
		Body:  fmt.Sprintf("%d pipelines loaded", len(pipelines)),
	})
	gw.alertFailures(ctx, pipelines)
}

// alertFailures notifies once per failed run id.
func (gw *Gateway) alertFailures(ctx context.Context, pipelines []models.Pipeline) {
	for _, p := range pipelines {
		if p.Status != models.StatusFailed {
			continue
		}
		gw.mu.Lock()
		seen := gw.alertedRuns[p.ID]
		if !seen {
			gw.alertedRuns[p.ID] = true
		}
		gw.mu.Unlock()
		if seen {
			continue
		}
		gw.broadcaster.send(SSEEvent{Type: "pipeline.failed", Payload: p})
		gw.notifier.Notify(ctx, notify.Event{
			Type:       "pipeline.failed",
			Title:      fmt.Sprintf("pipeline failed: %s", p.Name),
			Body:       fmt.Sprintf("branch %s, commit %s, author %s", p.Branch, p.Commit, p.Author),
			URL:        p.WorkflowURL,
			Pipeline:   p.ID,
			Repository: p.Repository,
		})
	}
}

// runStatsTicker pushes a status snapshot and the newest metrics sample to
// all connected SSE clients every 5 seconds.
func (gw *Gateway) runStatsTicker(ctx context.Context) {
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			gw.broadcaster.send(SSEEvent{Type: "status.update", Payload: gw.currentStatus()})
			if m := gw.svc.CurrentMetrics(); m != nil {
				gw.broadcaster.send(SSEEvent{Type: "metrics.sample", Payload: m})
			}
		}
	}
}

func (gw *Gateway) currentStatus() DashboardStatus {
	pipelines := gw.svc.Pipelines()
	st := DashboardStatus{
		Pipelines:     len(pipelines),
		Repositories:  len(gw.svc.Repositories()),
		UptimeSeconds: int64(time.Since(gw.startedAt).Seconds()),
	}
	for _, p := range pipelines {
		switch p.Status {
		case models.StatusRunning:
			st.Running++
		case models.StatusFailed:
			st.Failed++
		case models.StatusSuccess:
			st.Succeeded++
		}
	}
	if last := gw.svc.LastRefresh(); !last.IsZero() {
		st.LastRefreshAt = last.UTC().Format(time.RFC3339)
	}
	return st
}
