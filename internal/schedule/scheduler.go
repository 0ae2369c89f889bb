// Package schedule fires signal runs at fixed local clock times on
// trading days.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"stock-signals/internal/markethours"
)

// Job is the work a scheduler tick triggers.
type Job func(ctx context.Context)

// Scheduler fires a job at each configured check time (minutes since
// midnight, sorted ascending) in loc, skipping weekends and market
// holidays.
type Scheduler struct {
	loc    *time.Location
	checks []int
	job    Job
	log    *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a scheduler. checks must be sorted ascending.
func New(loc *time.Location, checks []int, job Job, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		loc:    loc,
		checks: checks,
		job:    job,
		log:    log,
		now:    time.Now,
	}
}

// NextFire returns the first check time strictly after t on a trading day.
func (s *Scheduler) NextFire(t time.Time) time.Time {
	local := t.In(s.loc)

	// Scan today then up to two weeks ahead; that covers any run of
	// weekends and holidays.
	for day := 0; day < 14; day++ {
		d := local.AddDate(0, 0, day)
		if !markethours.IsTradingDay(d) {
			continue
		}
		for _, m := range s.checks {
			fire := time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, s.loc)
			if fire.After(t) {
				return fire
			}
		}
	}
	// Unreachable with a sane calendar; return something far out so the
	// loop keeps ticking.
	return local.AddDate(0, 0, 14)
}

// Run blocks, firing the job at each check time, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("scheduler started",
		slog.String("timezone", s.loc.String()),
		slog.Int("checks", len(s.checks)))

	for {
		next := s.NextFire(s.now())
		wait := next.Sub(s.now())
		s.log.Info("next scheduled run",
			slog.Time("at", next),
			slog.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopped")
			return
		case <-timer.C:
			s.log.Info("scheduled run triggered", slog.Time("at", s.now()))
			s.job(ctx)
		}
	}
}
