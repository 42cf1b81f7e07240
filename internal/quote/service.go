package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
)

const defaultMaxItems = 200

// Service prices carts from the current offer snapshot.
type Service interface {
	Quote(ctx context.Context, req Request) (*Quote, error)
}

// ServiceParams wires the quote service. Metrics is optional.
type ServiceParams struct {
	Offers      offers.Source
	Markup      pricing.MarkupReader
	Currency    string
	SharedStock bool
	MaxItems    int
	Metrics     *metrics.PricingMetrics
	Logger      *logger.Logger
}

type service struct {
	offers   offers.Source
	markup   pricing.MarkupReader
	currency string
	shared   bool
	maxItems int
	metrics  *metrics.PricingMetrics
	logg     *logger.Logger
}

// ItemProblem describes one invalid request item.
type ItemProblem struct {
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// NewService constructs the quote service.
func NewService(params ServiceParams) (Service, error) {
	if params.Offers == nil {
		return nil, fmt.Errorf("offer source required")
	}
	if params.Markup == nil {
		return nil, fmt.Errorf("markup reader required")
	}
	if strings.TrimSpace(params.Currency) == "" {
		return nil, fmt.Errorf("currency required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return &service{
		offers:   params.Offers,
		markup:   params.Markup,
		currency: params.Currency,
		shared:   params.SharedStock,
		maxItems: maxItems,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Quote reads the markup and the offers of every requested product once and
// allocates each line against that snapshot. Shortfalls come back as line
// warnings, not errors.
func (s *service) Quote(ctx context.Context, req Request) (*Quote, error) {
	started := time.Now()
	items, err := s.normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}

	markup, err := s.markup.EffectiveMarkup(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read markup setting")
	}
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	snapshot, err := s.offers.ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier offers")
	}

	lines := AllocateCart(items, snapshot, markup, s.shared)
	quote := Assemble(s.currency, markup, s.shared, lines)
	if quote.ExceedsRange() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote total exceeds the supported range")
	}

	warned := 0
	for _, line := range lines {
		for _, w := range line.Warnings {
			s.metrics.IncLineWarning(string(w))
		}
		if len(line.Warnings) > 0 {
			warned++
		}
	}
	mode := metrics.QuoteModePerLine
	if s.shared {
		mode = metrics.QuoteModeShared
	}
	s.metrics.ObserveQuote(mode, time.Since(started))

	if warned > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"lines":        len(lines),
			"warned_lines": warned,
		})
		s.logg.Debug(logCtx, "quote.lines_short")
	}
	return &quote, nil
}

// normalizeItems trims ids, turns blank variant ids into base requests and
// reports every invalid item at once.
func (s *service) normalizeItems(raw []Item) ([]Item, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items are required")
	}
	if len(raw) > s.maxItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d items per quote", s.maxItems))
	}

	items := make([]Item, 0, len(raw))
	seen := make(map[string]int, len(raw))
	var problems []ItemProblem
	for i, item := range raw {
		item.Key = strings.TrimSpace(item.Key)
		item.ProductID = strings.TrimSpace(item.ProductID)
		if item.VariantID != nil {
			v := strings.TrimSpace(*item.VariantID)
			if v == "" {
				item.VariantID = nil
			} else {
				item.VariantID = &v
			}
		}

		switch {
		case item.Key == "":
			problems = append(problems, ItemProblem{Index: i, Reason: "key is required"})
		case item.ProductID == "":
			problems = append(problems, ItemProblem{Index: i, Key: item.Key, Reason: "productId is required"})
		case item.Qty <= 0:
			problems = append(problems, ItemProblem{Index: i, Key: item.Key, Reason: "qty must be greater than 0"})
		case item.Qty > MaxItemQty:
			problems = append(problems, ItemProblem{Index: i, Key: item.Key, Reason: fmt.Sprintf("qty must be at most %d", MaxItemQty)})
		}
		if item.Key != "" {
			if first, dup := seen[item.Key]; dup {
				problems = append(problems, ItemProblem{Index: i, Key: item.Key, Reason: fmt.Sprintf("duplicate key, first used at index %d", first)})
			} else {
				seen[item.Key] = i
			}
		}
		items = append(items, item)
	}

	if len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote items").
			WithDetails(map[string]any{"items": problems})
	}
	return items, nil
}
