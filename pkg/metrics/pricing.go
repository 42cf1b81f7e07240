package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Allocation modes recorded by PricingMetrics.ObserveQuote.
const (
	QuoteModePerLine = "per_line"
	QuoteModeShared  = "shared"
)

// Commit outcomes recorded by PricingMetrics.IncCommit.
const (
	CommitCommitted = "committed"
	CommitDrift     = "drift"
	CommitShortfall = "shortfall"
	CommitNoPrice   = "no_price"
	CommitFailed    = "failed"
)

// Import results recorded by PricingMetrics.AddImportRecords.
const (
	ImportUpserted = "upserted"
	ImportRejected = "rejected"
	ImportFailed   = "failed"
)

const unknownLabelName = "unknown"

// PricingMetrics records quote, commit and feed import activity.
type PricingMetrics struct {
	quotes        *prometheus.CounterVec
	quoteDuration prometheus.Histogram
	lineWarnings  *prometheus.CounterVec
	commits       *prometheus.CounterVec
	importRecords *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_quotes_total",
		Help: "Quotes computed, by allocation mode.",
	}, []string{"mode"})
	quoteDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "offers_quote_duration_seconds",
		Help:    "Time spent loading the offer snapshot and allocating a quote.",
		Buckets: prometheus.DefBuckets,
	})
	lineWarnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_quote_line_warnings_total",
		Help: "Quote line warnings, by warning type.",
	}, []string{"type"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_checkout_commits_total",
		Help: "Checkout commit attempts, by outcome.",
	}, []string{"outcome"})
	importRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offers_import_records_total",
		Help: "Supplier feed records processed by the import endpoint, by result.",
	}, []string{"result"})
	reg.MustRegister(quotes, quoteDuration, lineWarnings, commits, importRecords)
	return &PricingMetrics{
		quotes:        quotes,
		quoteDuration: quoteDuration,
		lineWarnings:  lineWarnings,
		commits:       commits,
		importRecords: importRecords,
	}
}

// ObserveQuote counts a quote and its duration.
func (m *PricingMetrics) ObserveQuote(mode string, duration time.Duration) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(mode)).Inc()
	m.quoteDuration.Observe(duration.Seconds())
}

// IncLineWarning counts a warning attached to a quote line.
func (m *PricingMetrics) IncLineWarning(warning string) {
	if m == nil || m.lineWarnings == nil {
		return
	}
	m.lineWarnings.WithLabelValues(normalizeLabel(warning)).Inc()
}

// IncCommit counts a commit attempt by outcome.
func (m *PricingMetrics) IncCommit(outcome string) {
	if m == nil || m.commits == nil {
		return
	}
	m.commits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddImportRecords counts processed feed records.
func (m *PricingMetrics) AddImportRecords(result string, n int) {
	if m == nil || m.importRecords == nil || n <= 0 {
		return
	}
	m.importRecords.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return unknownLabelName
	}
	return value
}
