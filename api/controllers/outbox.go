package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/api/validators"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

// DLQLister reads dead-lettered outbox events.
type DLQLister interface {
	List(ctx context.Context, limit int) ([]models.OutboxDLQ, error)
}

type dlqEntryView struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"eventId"`
	EventType     string          `json:"eventType"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   uuid.UUID       `json:"aggregateId"`
	Payload       json.RawMessage `json:"payload"`
	ErrorReason   string          `json:"errorReason"`
	ErrorMessage  *string         `json:"errorMessage,omitempty"`
	AttemptCount  int             `json:"attemptCount"`
	FailedAt      time.Time       `json:"failedAt"`
}

func newDLQEntryView(row models.OutboxDLQ) dlqEntryView {
	return dlqEntryView{
		ID:            row.ID,
		EventID:       row.EventID,
		EventType:     string(row.EventType),
		AggregateType: string(row.AggregateType),
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   string(row.ErrorReason),
		ErrorMessage:  row.ErrorMessage,
		AttemptCount:  row.AttemptCount,
		FailedAt:      row.FailedAt,
	}
}

// AdminOutboxDLQ lists the most recent dead-lettered domain events.
func AdminOutboxDLQ(repo DLQLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "outbox unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := repo.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list outbox dlq"))
			return
		}
		events := make([]dlqEntryView, 0, len(rows))
		for _, row := range rows {
			events = append(events, newDLQEntryView(row))
		}
		responses.WriteSuccess(w, map[string]any{"events": events})
	}
}
