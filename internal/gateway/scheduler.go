package gateway

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic cache refresh from a single cron
// expression in the config ("0 * * * *", "@every 5m", "@hourly", ...).
type Scheduler struct {
	cron *cron.Cron
}

func newScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start validates expr, registers refreshFn against it, and starts the
// cron runner.
func (s *Scheduler) Start(expr string, refreshFn func()) error {
	if _, err := s.cron.AddFunc(expr, refreshFn); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", expr, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner gracefully.
func (s *Scheduler) Stop() { s.cron.Stop() }
