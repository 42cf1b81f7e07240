package quote

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/metrics"
)

type stubSource struct {
	offers []offers.Offer
	err    error
	calls  int
	ids    []string
}

func (s *stubSource) ListByProducts(_ context.Context, ids []string) ([]offers.Offer, error) {
	s.calls++
	s.ids = ids
	return s.offers, s.err
}

type stubMarkup struct {
	pct decimal.Decimal
	err error
}

func (s stubMarkup) EffectiveMarkup(context.Context) (decimal.Decimal, error) {
	return s.pct, s.err
}

func newQuoteService(t *testing.T, source *stubSource, markup stubMarkup, shared bool) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Offers:      source,
		Markup:      markup,
		Currency:    "IDR",
		SharedStock: shared,
		Metrics:     metrics.NewPricingMetrics(prometheus.NewRegistry()),
		Logger:      logger.New(logger.Options{ServiceName: "quote-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestQuoteUsesOneSnapshot(t *testing.T) {
	source := &stubSource{offers: twoSuppliers()}
	svc := newQuoteService(t, source, stubMarkup{pct: decimal.NewFromInt(10)}, false)

	q, err := svc.Quote(context.Background(), Request{Items: []Item{
		{Key: "a", ProductID: "p1", Qty: 5},
		{Key: "b", ProductID: " p1 ", VariantID: strPtr(" "), Qty: 10},
	}})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one offer read, got %d", source.calls)
	}
	if q.Currency != "IDR" || !q.MarkupPercent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected header %+v", q)
	}
	if q.Lines["a"].LineTotal != 616 {
		t.Fatalf("unexpected line a %+v", q.Lines["a"])
	}
	b := q.Lines["b"]
	if b.VariantID != nil || b.QtyPriced != 7 || !b.HasWarning(WarningPartialAllocation) {
		t.Fatalf("unexpected line b %+v", b)
	}
	if q.Subtotal != q.Lines["a"].LineTotal+b.LineTotal {
		t.Fatalf("subtotal %d does not match lines", q.Subtotal)
	}
}

func TestQuoteSharedStock(t *testing.T) {
	source := &stubSource{offers: twoSuppliers()}
	svc := newQuoteService(t, source, stubMarkup{pct: decimal.NewFromInt(10)}, true)

	q, err := svc.Quote(context.Background(), Request{Items: []Item{
		{Key: "a", ProductID: "p1", Qty: 5},
		{Key: "b", ProductID: "p1", Qty: 5},
	}})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.SharedStock || q.Lines["b"].QtyPriced != 2 {
		t.Fatalf("unexpected shared quote %+v", q)
	}
}

func TestQuoteValidationListsEveryProblem(t *testing.T) {
	svc := newQuoteService(t, &stubSource{}, stubMarkup{pct: decimal.NewFromInt(10)}, false)

	_, err := svc.Quote(context.Background(), Request{Items: []Item{
		{Key: "a", ProductID: "p1", Qty: 0},
		{Key: "", ProductID: "p1", Qty: 1},
		{Key: "a", ProductID: "", Qty: 1},
	}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	problems := details["items"].([]ItemProblem)
	if len(problems) != 4 {
		t.Fatalf("expected 4 problems, got %+v", problems)
	}

	if _, err := svc.Quote(context.Background(), Request{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestQuoteDependencyErrors(t *testing.T) {
	items := Request{Items: []Item{{Key: "a", ProductID: "p1", Qty: 1}}}

	svc := newQuoteService(t, &stubSource{err: errors.New("db down")}, stubMarkup{pct: decimal.NewFromInt(10)}, false)
	if _, err := svc.Quote(context.Background(), items); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	svc = newQuoteService(t, &stubSource{}, stubMarkup{err: errors.New("settings down")}, false)
	if _, err := svc.Quote(context.Background(), items); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestQuoteRejectsOversizedQuantities(t *testing.T) {
	source := &stubSource{offers: []offers.Offer{offer("A", "p1", nil, "10000000000", nil)}}
	svc := newQuoteService(t, source, stubMarkup{pct: decimal.NewFromInt(10)}, false)

	_, err := svc.Quote(context.Background(), Request{Items: []Item{{Key: "a", ProductID: "p1", Qty: MaxItemQty + 1}}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	problems := typed.Details().(map[string]any)["items"].([]ItemProblem)
	if len(problems) != 1 || problems[0].Key != "a" {
		t.Fatalf("unexpected problems %+v", problems)
	}

	// Within the qty bound, but 2^31-1 units at 11e9 each overflows int64.
	_, err = svc.Quote(context.Background(), Request{Items: []Item{{Key: "a", ProductID: "p1", Qty: MaxItemQty}}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for out-of-range total, got %v", err)
	}

	q, err := svc.Quote(context.Background(), Request{Items: []Item{{Key: "a", ProductID: "p1", Qty: 1000}}})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Subtotal != 11_000_000_000_000 {
		t.Fatalf("unexpected subtotal %d", q.Subtotal)
	}
}
