// Package metrics provides Prometheus metrics for ingestion and retention.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rss_digest"

// Metrics holds the counters. A nil *Metrics records nothing.
type Metrics struct {
	ArticlesCreated prometheus.Counter
	ArticlesSkipped prometheus.Counter
	ItemErrors      prometheus.Counter
	SourceFailures  *prometheus.CounterVec
	ArticlesSwept   prometheus.Counter
	FetchDuration   prometheus.Histogram
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ArticlesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Total number of articles stored by ingestion",
		}),
		ArticlesSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_skipped_total",
			Help:      "Total number of feed items skipped as already stored",
		}),
		ItemErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_errors_total",
			Help:      "Total number of feed items that failed to store",
		}),
		SourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Total number of feed retrievals that failed",
		}, []string{"source"}),
		ArticlesSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_swept_total",
			Help:      "Total number of articles removed by retention",
		}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of one source ingestion in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordCreated() {
	if m != nil {
		m.ArticlesCreated.Inc()
	}
}

func (m *Metrics) RecordSkipped() {
	if m != nil {
		m.ArticlesSkipped.Inc()
	}
}

func (m *Metrics) RecordItemError() {
	if m != nil {
		m.ItemErrors.Inc()
	}
}

// RecordSourceFailure counts a feed that could not be retrieved or parsed.
func (m *Metrics) RecordSourceFailure(source string) {
	if m != nil {
		m.SourceFailures.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) RecordSwept(n int64) {
	if m != nil && n > 0 {
		m.ArticlesSwept.Add(float64(n))
	}
}

func (m *Metrics) ObserveFetch(seconds float64) {
	if m != nil {
		m.FetchDuration.Observe(seconds)
	}
}
