package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsForTestingUnregistered(t *testing.T) {
	// Two instances in one process: must not panic on duplicate registration.
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RecordsParsed.WithLabelValues("metbk").Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.RecordsParsed.WithLabelValues("metbk")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsParsed.WithLabelValues("metbk")))
}

func TestMetricsLabels(t *testing.T) {
	m := NewMetricsForTesting()

	m.LinesClassified.WithLabelValues("metbk", "data").Inc()
	m.LinesClassified.WithLabelValues("metbk", "recoverable").Inc()
	m.LinesClassified.WithLabelValues("metbk", "noise").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesClassified.WithLabelValues("metbk", "data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinesClassified.WithLabelValues("metbk", "noise")))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "info", "json"},
		{"text debug", "debug", "text"},
		{"unknown values fall back", "loud", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level, tt.format)
			require.NotNil(t, logger)
			logger.Info("logger works", "level", tt.level)
		})
	}
}
