package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCreated()
	m.RecordCreated()
	m.RecordSkipped()
	m.RecordItemError()
	m.RecordSourceFailure("Go Blog")
	m.RecordSwept(3)
	m.RecordSwept(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ArticlesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("Go Blog")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ArticlesSwept))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCreated()
		m.RecordSkipped()
		m.RecordItemError()
		m.RecordSourceFailure("x")
		m.RecordSwept(1)
		m.ObserveFetch(0.1)
	})
}
