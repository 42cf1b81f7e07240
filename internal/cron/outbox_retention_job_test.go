package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/db"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
	"github.com/angelmondragon/packfinderz-offers/pkg/enums"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox"
)

func openCronDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}, &models.OutboxDLQ{}))
	return conn
}

func seedEvent(t *testing.T, conn *gorm.DB, publishedAt *time.Time) uuid.UUID {
	t.Helper()
	event := models.OutboxEvent{
		EventType:     enums.EventOrderPriced,
		AggregateType: enums.AggregatePricedOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		PublishedAt:   publishedAt,
	}
	require.NoError(t, conn.Create(&event).Error)
	return event.ID
}

func TestOutboxRetentionJobPurgesOldRows(t *testing.T) {
	conn := openCronDB(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	oldID := seedEvent(t, conn, &old)
	recentID := seedEvent(t, conn, &recent)
	pendingID := seedEvent(t, conn, nil)

	require.NoError(t, conn.Create(&models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     enums.EventOffersImported,
		AggregateType: enums.AggregateOfferFeed,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		FailedAt:      now.Add(-100 * 24 * time.Hour),
	}).Error)

	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		DB:          db.NewFromGorm(conn),
		Events:      outbox.NewRepository(conn),
		DeadLetters: outbox.NewDLQRepository(conn),
	})
	require.NoError(t, err)
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	rows, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	var remaining []uuid.UUID
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Pluck("id", &remaining).Error)
	assert.ElementsMatch(t, []uuid.UUID{recentID, pendingID}, remaining)
	assert.NotContains(t, remaining, oldID)

	var dlqCount int64
	require.NoError(t, conn.Model(&models.OutboxDLQ{}).Count(&dlqCount).Error)
	assert.Zero(t, dlqCount)
}

func TestNewOutboxRetentionJobValidates(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: logg})
	assert.Error(t, err)
	_, err = NewOutboxRetentionJob(OutboxRetentionJobParams{DB: db.NewFromGorm(nil)})
	assert.Error(t, err)
}
