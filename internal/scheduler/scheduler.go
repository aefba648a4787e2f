// Package scheduler re-renders calendar files on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"calgen/internal/definition"
	appLog "calgen/internal/log"
	"calgen/internal/pipeline"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron spec or a descriptor
// such as "@daily". A run still in progress when the next one is due is
// skipped.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	schedule cron.Schedule
	job      Job
}

// New validates spec and prepares a Scheduler for job.
func New(spec string, job Job) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec:     spec,
		job:      job,
		schedule: schedule,
	}, nil
}

// Run starts the schedule and blocks until ctx is canceled, then waits for
// a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("scheduler: add job: %w", err)
	}
	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec, "next", s.Next(time.Now()).Format(time.RFC3339))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("scheduler stopped")
	return nil
}

// Next is the time of the next run after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		appLog.Error("scheduled run failed", err, "spec", s.spec)
		return
	}
	appLog.Info("scheduled run completed", "elapsed", time.Since(start).Round(time.Millisecond), "next", s.Next(time.Now()).Format(time.RFC3339))
}

// RenderJob renders outputs for the years computed at run time into dir.
// groups is consulted on every run so reloaded definitions are picked up;
// with start 0 the current year is re-evaluated each time.
func RenderJob(b *pipeline.Builder, groups func() ([]definition.Group, error), start, count int, outputs []pipeline.Output, dir string) Job {
	return func(ctx context.Context) error {
		gs, err := groups()
		if err != nil {
			return err
		}
		years := pipeline.Years(start, count, time.Now())
		_, err = b.RenderYears(ctx, gs, years, outputs, dir)
		return err
	}
}

// cronLogger routes cron's own diagnostics through appLog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
