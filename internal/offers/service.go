package offers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
	"github.com/angelmondragon/packfinderz-offers/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox/payloads"
	"github.com/angelmondragon/packfinderz-offers/pkg/redis"
)

const (
	// MaxImportRecords bounds one feed import request.
	MaxImportRecords = 1000
	importLockTTL    = 2 * time.Minute

	// unitCostScale matches supplier_offers.unit_cost numeric(14,2).
	unitCostScale = 2
)

var maxUnitCost = decimal.RequireFromString("999999999999.99")

// Service exposes supplier feed ingestion.
type Service interface {
	Import(ctx context.Context, input ImportInput) (*ImportResult, error)
}

// ImportInput is one batch of heterogeneous supplier records.
type ImportInput struct {
	Source  string
	Records []Record
}

// RejectedRecord explains why a record was not stored.
type RejectedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a feed import.
type ImportResult struct {
	ImportID uuid.UUID        `json:"importId"`
	Created  int              `json:"created"`
	Updated  int              `json:"updated"`
	Rejected []RejectedRecord `json:"rejected"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the import service. Locker and Metrics are optional.
type ServiceParams struct {
	Repo    *Repository
	DB      txRunner
	Outbox  outbox.Emitter
	Locker  redis.Locker
	Metrics *metrics.PricingMetrics
	Logger  *logger.Logger
}

type service struct {
	repo    *Repository
	db      txRunner
	outbox  outbox.Emitter
	locker  redis.Locker
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
}

// NewService constructs the offer import service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		db:      params.DB,
		outbox:  params.Outbox,
		locker:  params.Locker,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

func (s *service) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	if len(input.Records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "records are required")
	}
	if len(input.Records) > MaxImportRecords {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d records per import", MaxImportRecords))
	}
	source := strings.TrimSpace(input.Source)

	if s.locker != nil && source != "" {
		release, ok, err := s.locker.TryLock(ctx, "offers-import:"+source, importLockTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire import lock")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an import for this source is already running")
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "offers.import.unlock_failed")
			}
		}()
	}

	result := &ImportResult{ImportID: uuid.New(), Rejected: []RejectedRecord{}}
	accepted := make([]models.SupplierOffer, 0, len(input.Records))
	var rejectErr error
	for i, rec := range input.Records {
		offer, err := NormalizeRecord(rec)
		if err == nil {
			err = checkStoredCost(offer)
		}
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRecord{Index: i, Reason: err.Error()})
			rejectErr = multierr.Append(rejectErr, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		accepted = append(accepted, toModel(*offer, source))
	}

	if rejectErr != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"import_id": result.ImportID.String(),
			"rejected":  len(result.Rejected),
			"error":     rejectErr.Error(),
		})
		s.logg.Warn(logCtx, "offers.import.records_rejected")
	}
	s.metrics.AddImportRecords(metrics.ImportRejected, len(result.Rejected))

	if len(accepted) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no importable records").
			WithDetails(map[string]any{"rejected": result.Rejected})
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i := range accepted {
			created, err := txRepo.Upsert(ctx, &accepted[i])
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOffersImported,
			AggregateType: enums.AggregateOfferFeed,
			AggregateID:   result.ImportID,
			RequestID:     logger.RequestIDFromContext(ctx),
			Data:          importedEvent(result, source, accepted),
		})
	})
	if err != nil {
		s.metrics.AddImportRecords(metrics.ImportFailed, len(accepted))
		if errors.Is(err, ErrIdentityConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent offer write, retry the import")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store supplier offers")
	}

	s.metrics.AddImportRecords(metrics.ImportUpserted, len(accepted))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"import_id": result.ImportID.String(),
		"source":    source,
		"created":   result.Created,
		"updated":   result.Updated,
	})
	s.logg.Info(logCtx, "offers.import.completed")
	return result, nil
}

// checkStoredCost rounds the unit cost to the stored scale and rejects
// costs the supplier_offers column would zero out or cannot hold.
func checkStoredCost(offer *Offer) error {
	if !offer.UnitCost.IsPositive() {
		return errors.New("unit cost must be a positive number")
	}
	offer.UnitCost = offer.UnitCost.Round(unitCostScale)
	if !offer.UnitCost.IsPositive() {
		return errors.New("unit cost rounds to zero")
	}
	if offer.UnitCost.GreaterThan(maxUnitCost) {
		return fmt.Errorf("unit cost exceeds %s", maxUnitCost)
	}
	return nil
}

func toModel(offer Offer, source string) models.SupplierOffer {
	row := models.SupplierOffer{
		SupplierID:   offer.SupplierID,
		ProductID:    offer.ProductID,
		VariantID:    offer.VariantID,
		UnitCost:     offer.UnitCost.Round(unitCostScale),
		AvailableQty: offer.AvailableQty,
		IsActive:     offer.IsActive,
		IsInStock:    offer.IsInStock,
	}
	if source != "" {
		src := source
		row.Source = &src
	}
	return row
}

func importedEvent(result *ImportResult, source string, rows []models.SupplierOffer) payloads.OffersImportedEvent {
	suppliers := map[string]struct{}{}
	products := map[string]struct{}{}
	for _, row := range rows {
		suppliers[row.SupplierID] = struct{}{}
		products[row.ProductID] = struct{}{}
	}
	return payloads.OffersImportedEvent{
		ImportID:    result.ImportID,
		Source:      source,
		SupplierIDs: sortedKeys(suppliers),
		ProductIDs:  sortedKeys(products),
		Upserted:    result.Created + result.Updated,
		Rejected:    len(result.Rejected),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
