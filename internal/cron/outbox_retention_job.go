package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

const (
	defaultOutboxRetention = 30 * 24 * time.Hour
	defaultDLQRetention    = 90 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type publishedEventPurger interface {
	DeletePublishedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type deadLetterPurger interface {
	DeleteFailedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

// OutboxRetentionJobParams wire the outbox cleanup. Zero retentions fall
// back to 30 days for published events and 90 days for dead letters.
type OutboxRetentionJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Events       publishedEventPurger
	DeadLetters  deadLetterPurger
	Retention    time.Duration
	DLQRetention time.Duration
}

type outboxRetentionJob struct {
	logg         *logger.Logger
	db           txRunner
	events       publishedEventPurger
	deadLetters  deadLetterPurger
	retention    time.Duration
	dlqRetention time.Duration
	now          func() time.Time
}

// NewOutboxRetentionJob deletes published outbox events and old dead
// letters. Unpublished events are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	job := &outboxRetentionJob{
		logg:         params.Logger,
		db:           params.DB,
		events:       params.Events,
		deadLetters:  params.DeadLetters,
		retention:    params.Retention,
		dlqRetention: params.DLQRetention,
		now:          time.Now,
	}
	if job.retention <= 0 {
		job.retention = defaultOutboxRetention
	}
	if job.dlqRetention <= 0 {
		job.dlqRetention = defaultDLQRetention
	}
	return job, nil
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	eventCutoff := now.Add(-j.retention)
	dlqCutoff := now.Add(-j.dlqRetention)

	var events, deadLetters int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		if events, err = j.events.DeletePublishedBefore(tx, eventCutoff); err != nil {
			return fmt.Errorf("purge published events: %w", err)
		}
		if j.deadLetters == nil {
			return nil
		}
		if deadLetters, err = j.deadLetters.DeleteFailedBefore(tx, dlqCutoff); err != nil {
			return fmt.Errorf("purge dead letters: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"event_cutoff":         eventCutoff,
		"dlq_cutoff":           dlqCutoff,
		"events_deleted":       events,
		"dead_letters_deleted": deadLetters,
	}), "maintenance.outbox_purged")
	return events + deadLetters, nil
}
