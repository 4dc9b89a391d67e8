package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Str("code", "Custom").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "visible", entry["message"])
	require.Equal(t, "Custom", entry["code"])
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "console", "nonsense")
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Info().Msg("hello")
	require.Contains(t, buf.String(), "hello")
}

func TestPricingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics("test", reg)
	m.ObserveQuote(time.Millisecond)
	m.ObserveGroup(true, "flat_percentage")
	m.ObserveGroup(false, "")
	m.ObserveClamp("upper")

	require.Equal(t, 1.0, testutil.ToFloat64(m.Quotes))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Groups.WithLabelValues("discounted")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Groups.WithLabelValues("list_price")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.PromotionSelected.WithLabelValues("flat_percentage")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ResultClamped.WithLabelValues("upper")))

	again := NewPricingMetrics("test", reg)
	again.ObserveQuote(time.Millisecond)
	require.Equal(t, 2.0, testutil.ToFloat64(m.Quotes))
}

func TestPricingMetricsNil(t *testing.T) {
	var m *PricingMetrics
	require.NotPanics(t, func() {
		m.ObserveQuote(time.Second)
		m.ObserveGroup(true, "custom")
		m.ObserveClamp("lower")
	})
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(RequestLogger{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}.Middleware)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "/health/live", entry["route"])
	require.EqualValues(t, http.StatusNoContent, entry["status"])
	require.Equal(t, "http_request", entry["message"])
}
