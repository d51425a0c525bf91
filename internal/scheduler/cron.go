package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner drives the checker on a fixed interval using a cron scheduler.
type Runner struct {
	cron    *cron.Cron
	checker *Checker
	log     *slog.Logger
}

func NewRunner(checker *Checker, interval time.Duration, loc *time.Location, log *slog.Logger) (*Runner, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	r := &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		checker: checker,
		log:     log,
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := r.cron.AddFunc(spec, func() {
		r.checker.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("scheduler: add job: %w", err)
	}
	return r, nil
}

// Start runs an immediate pass and then begins the interval schedule.
func (r *Runner) Start(ctx context.Context) {
	r.log.Info("scheduler started")
	r.checker.RunOnce(ctx)
	r.cron.Start()
}

// Stop halts the schedule and waits for a running pass to finish.
func (r *Runner) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.log.Info("scheduler stopped")
}
