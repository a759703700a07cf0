package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRefresh(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.RecordRefresh("manual", nil)
	m.RecordRefresh("scheduled", errors.New("boom"))
	m.RecordRefresh("scheduled", errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.conditionsRefreshTotal.WithLabelValues("manual", StatusSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.conditionsRefreshTotal.WithLabelValues("scheduled", StatusError)))
}

func TestRecordFetch(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.RecordFetch(300*time.Millisecond, []string{"soil", "climate"})
	m.RecordFetch(100*time.Millisecond, []string{"soil"})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.fetchErrorsTotal.WithLabelValues("soil")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetchErrorsTotal.WithLabelValues("climate")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestRecordRecommendations(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.RecordRecommendations(true)
	m.RecordRecommendations(false)
	m.RecordRecommendations(true)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.recommendationsTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.recommendationsTotal.WithLabelValues("miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRefresh("manual", nil)
		m.RecordFetch(time.Second, []string{"soil"})
		m.RecordRecommendations(true)
		m.RecordReport(nil)
	})
}

func TestHandler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.RecordReport(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `farm_balance_reports_total{status="success"} 1`)
}
