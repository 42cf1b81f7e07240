package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

type staleOfferDeactivator interface {
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type offerExpiryJob struct {
	logg   *logger.Logger
	offers staleOfferDeactivator
	maxAge time.Duration
	now    func() time.Time
}

// NewOfferExpiryJob deactivates offers whose feed has not refreshed them
// within maxAge, so quotes stop allocating against abandoned stock.
func NewOfferExpiryJob(logg *logger.Logger, offers staleOfferDeactivator, maxAge time.Duration) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}
	return &offerExpiryJob{logg: logg, offers: offers, maxAge: maxAge, now: time.Now}, nil
}

func (j *offerExpiryJob) Name() string { return "offer-expiry" }

func (j *offerExpiryJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.maxAge)
	n, err := j.offers.DeactivateStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale offers: %w", err)
	}
	if n > 0 {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"cutoff":      cutoff,
			"deactivated": n,
		}), "maintenance.offers_expired")
	}
	return n, nil
}
