package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
	"github.com/angelmondragon/packfinderz-offers/pkg/redis"
)

const (
	defaultInterval = time.Hour
	cycleLockName   = "maintenance-cycle"
)

// ServiceParams configure the maintenance scheduler. Locker is optional;
// without it every instance runs every cycle.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Locker   redis.Locker
	Metrics  *metrics.MaintenanceMetrics
	Interval time.Duration
}

// Service runs the registered jobs on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	locker   redis.Locker
	metrics  *metrics.MaintenanceMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("registry required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: params.Registry,
		locker:   params.Locker,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run executes a cycle immediately and then once per interval until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "maintenance.cycle_failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "maintenance.cycle_failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, cycleLockName, s.interval)
		if err != nil {
			return fmt.Errorf("acquire cycle lock: %w", err)
		}
		if !ok {
			s.logg.Info(ctx, "maintenance.cycle_skipped")
			return nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logg.Error(ctx, "maintenance.lock_release_failed", err)
			}
		}()
	}

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
	return nil
}

// runJob never aborts the cycle; a failing job is logged and counted.
func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()
	rows, err := job.Run(jobCtx)
	duration := time.Since(start)
	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms":   duration.Milliseconds(),
		"rows_affected": rows,
	})
	if err != nil {
		s.logg.Error(jobCtx, "maintenance.job_failed", err)
		s.metrics.ObserveRun(job.Name(), metrics.JobFailed, duration)
		return
	}
	s.logg.Info(jobCtx, "maintenance.job_completed")
	s.metrics.ObserveRun(job.Name(), metrics.JobSucceeded, duration)
	s.metrics.AddAffected(job.Name(), rows)
}
