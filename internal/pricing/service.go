package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	"github.com/angelmondragon/packfinderz-offers/internal/repo"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
)

// MaxSnapshotProducts bounds one snapshot request.
const MaxSnapshotProducts = 200

// MarkupReader returns the markup percentage in effect right now.
type MarkupReader interface {
	EffectiveMarkup(ctx context.Context) (decimal.Decimal, error)
}

// SnapshotResult carries per-product snapshots and the markup they used.
type SnapshotResult struct {
	MarkupPercent decimal.Decimal     `json:"markupPercent"`
	Products      map[string]Snapshot `json:"products"`
}

// Service builds price snapshots from the current offers and markup.
type Service interface {
	Snapshots(ctx context.Context, productIDs []string) (*SnapshotResult, error)
}

type service struct {
	offers offers.Source
	markup MarkupReader
}

// NewService constructs the snapshot service.
func NewService(source offers.Source, markup MarkupReader) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("offer source required")
	}
	if markup == nil {
		return nil, fmt.Errorf("markup reader required")
	}
	return &service{offers: source, markup: markup}, nil
}

func (s *service) Snapshots(ctx context.Context, productIDs []string) (*SnapshotResult, error) {
	ids := repo.DistinctIDs(productIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productIds are required")
	}
	if len(ids) > MaxSnapshotProducts {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d products per request", MaxSnapshotProducts))
	}

	markup, err := s.markup.EffectiveMarkup(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read markup setting")
	}
	all, err := s.offers.ListByProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier offers")
	}

	result := &SnapshotResult{
		MarkupPercent: markup,
		Products:      make(map[string]Snapshot, len(ids)),
	}
	for _, id := range ids {
		result.Products[id] = Resolve(ComputeCaps(id, all), markup)
	}
	return result, nil
}
