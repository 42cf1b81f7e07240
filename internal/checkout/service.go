package checkout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/internal/quote"
	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
	"github.com/angelmondragon/packfinderz-offers/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox"
	"github.com/angelmondragon/packfinderz-offers/pkg/outbox/payloads"
)

var hundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CommitInput is the cart the buyer saw and the subtotal they were quoted.
type CommitInput struct {
	Items          []quote.Item `json:"items"`
	QuotedSubtotal int64        `json:"quotedSubtotal"`
	AcceptDrift    bool         `json:"acceptDrift"`
}

// CommitResult is the stored order and the quote it was priced from.
type CommitResult struct {
	OrderID        uuid.UUID    `json:"orderId"`
	QuotedSubtotal int64        `json:"quotedSubtotal"`
	DriftAccepted  bool         `json:"driftAccepted"`
	Quote          *quote.Quote `json:"quote"`
}

// Service commits quotes into priced order snapshots.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*CommitResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error)
}

// ServiceParams wires the checkout service. Metrics is optional.
type ServiceParams struct {
	Quotes                quote.Service
	DB                    txRunner
	Orders                Repository
	Outbox                outbox.Emitter
	DriftTolerancePercent decimal.Decimal
	Metrics               *metrics.PricingMetrics
	Logger                *logger.Logger
}

type service struct {
	quotes    quote.Service
	db        txRunner
	orders    Repository
	outbox    outbox.Emitter
	tolerance decimal.Decimal
	metrics   *metrics.PricingMetrics
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Quotes == nil {
		return nil, fmt.Errorf("quote service required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DriftTolerancePercent.IsNegative() {
		return nil, fmt.Errorf("drift tolerance must not be negative")
	}
	return &service{
		quotes:    params.Quotes,
		db:        params.DB,
		orders:    params.Orders,
		outbox:    params.Outbox,
		tolerance: params.DriftTolerancePercent,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// Commit re-prices the cart from current offers and markup, refuses lines
// that cannot be fully covered, checks the drift against the quoted
// subtotal, then stores the order and its order_priced event together.
// Nothing is reserved: the snapshot records prices, not stock.
func (s *service) Commit(ctx context.Context, input CommitInput) (*CommitResult, error) {
	if input.QuotedSubtotal <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotedSubtotal must be greater than 0")
	}

	current, err := s.quotes.Quote(ctx, quote.Request{Items: input.Items})
	if err != nil {
		s.metrics.IncCommit(metrics.CommitFailed)
		return nil, err
	}

	if err := s.checkCoverage(current); err != nil {
		return nil, err
	}

	drifted := current.Subtotal != input.QuotedSubtotal
	if s.driftExceeded(current.Subtotal, input.QuotedSubtotal) && !input.AcceptDrift {
		s.metrics.IncCommit(metrics.CommitDrift)
		return nil, pkgerrors.New(pkgerrors.CodeStalePriceDrift, "prices changed since the quote").
			WithDetails(map[string]any{
				"quotedSubtotal":   input.QuotedSubtotal,
				"currentSubtotal":  current.Subtotal,
				"tolerancePercent": s.tolerance,
			})
	}

	order := toOrder(current, input.QuotedSubtotal, drifted && input.AcceptDrift)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).CreatePricedOrder(ctx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPriced,
			AggregateType: enums.AggregatePricedOrder,
			AggregateID:   order.ID,
			RequestID:     logger.RequestIDFromContext(ctx),
			Data:          pricedEvent(order, current),
			OccurredAt:    time.Now().UTC(),
		})
	})
	if err != nil {
		s.metrics.IncCommit(metrics.CommitFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store priced order")
	}

	s.metrics.IncCommit(metrics.CommitCommitted)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":        order.ID.String(),
		"subtotal":        order.Subtotal,
		"quoted_subtotal": order.QuotedSubtotal,
		"drift_accepted":  order.DriftAccepted,
	})
	s.logg.Info(logCtx, "checkout.commit.completed")

	return &CommitResult{
		OrderID:        order.ID,
		QuotedSubtotal: input.QuotedSubtotal,
		DriftAccepted:  order.DriftAccepted,
		Quote:          current,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load priced order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "priced order not found")
	}
	view := NewOrderView(order)
	return &view, nil
}

// checkCoverage rejects lines without a price first, then short lines.
func (s *service) checkCoverage(q *quote.Quote) error {
	var unpriced, short []string
	for _, key := range q.Order {
		line := q.Lines[key]
		switch {
		case line.HasWarning(quote.WarningNoAdmissiblePrice):
			unpriced = append(unpriced, key)
		case line.QtyPriced < line.QtyRequested:
			short = append(short, key)
		}
	}
	if len(unpriced) > 0 {
		s.metrics.IncCommit(metrics.CommitNoPrice)
		return pkgerrors.New(pkgerrors.CodeNoAdmissiblePrice, "no purchasable offer for some lines").
			WithDetails(map[string]any{"lineKeys": unpriced})
	}
	if len(short) > 0 {
		s.metrics.IncCommit(metrics.CommitShortfall)
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient supplier stock").
			WithDetails(map[string]any{"lineKeys": short})
	}
	return nil
}

// driftExceeded reports |current-quoted| * 100 > quoted * tolerance.
func (s *service) driftExceeded(current, quoted int64) bool {
	diff := current - quoted
	if diff < 0 {
		diff = -diff
	}
	return decimal.NewFromInt(diff).Mul(hundred).GreaterThan(decimal.NewFromInt(quoted).Mul(s.tolerance))
}

func toOrder(q *quote.Quote, quotedSubtotal int64, driftAccepted bool) *models.PricedOrder {
	order := &models.PricedOrder{
		ID:             uuid.New(),
		Currency:       q.Currency,
		MarkupPercent:  q.MarkupPercent,
		Subtotal:       q.Subtotal,
		CostSubtotal:   q.CostSubtotal,
		QuotedSubtotal: quotedSubtotal,
		DriftAccepted:  driftAccepted,
	}
	for _, key := range q.Order {
		line := q.Lines[key]
		for _, alloc := range line.Allocations {
			order.Allocations = append(order.Allocations, models.PricedOrderAllocation{
				OrderID:         order.ID,
				LineKey:         key,
				ProductID:       line.ProductID,
				VariantID:       line.VariantID,
				SupplierID:      alloc.SupplierID,
				Qty:             alloc.Qty,
				UnitCost:        alloc.UnitCost,
				RetailUnitPrice: alloc.RetailUnitPrice,
			})
		}
	}
	return order
}

func pricedEvent(order *models.PricedOrder, q *quote.Quote) payloads.OrderPricedEvent {
	event := payloads.OrderPricedEvent{
		OrderID:        order.ID,
		Currency:       order.Currency,
		MarkupPercent:  order.MarkupPercent,
		Subtotal:       order.Subtotal,
		CostSubtotal:   order.CostSubtotal,
		QuotedSubtotal: order.QuotedSubtotal,
		DriftAccepted:  order.DriftAccepted,
		Lines:          make([]payloads.OrderPricedLine, 0, len(q.Order)),
	}
	keys := append([]string(nil), q.Order...)
	sort.Strings(keys)
	for _, key := range keys {
		line := q.Lines[key]
		out := payloads.OrderPricedLine{
			Key:         key,
			ProductID:   line.ProductID,
			VariantID:   line.VariantID,
			Qty:         line.QtyPriced,
			LineTotal:   line.LineTotal,
			Allocations: make([]payloads.OrderPricedAllocation, 0, len(line.Allocations)),
		}
		for _, alloc := range line.Allocations {
			out.Allocations = append(out.Allocations, payloads.OrderPricedAllocation{
				SupplierID:      alloc.SupplierID,
				Qty:             alloc.Qty,
				UnitCost:        alloc.UnitCost,
				RetailUnitPrice: alloc.RetailUnitPrice,
			})
		}
		event.Lines = append(event.Lines, out)
	}
	return event
}
