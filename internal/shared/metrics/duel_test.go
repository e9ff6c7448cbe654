package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/radieske/duel-wager/internal/duel"
)

var _ duel.Observer = (*DuelMetrics)(nil)

func TestDuelMetricsCounts(t *testing.T) {
	m := NewDuelMetrics(prometheus.NewRegistry())

	m.BetPlaced("STARS")
	m.BetPlaced("STARS")
	m.BetRejected("insufficient_funds")
	m.MatchResolved("GIFTS", "item", 5, 30)
	m.MatchResolved("STARS", "stars", 1, 29)

	require.Equal(t, 2.0, testutil.ToFloat64(m.BetsPlaced.WithLabelValues("STARS")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.BetsRejected.WithLabelValues("insufficient_funds")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.MatchesResolved.WithLabelValues("GIFTS", "item")))
	require.Equal(t, 6.0, testutil.ToFloat64(m.Commission))
	require.Equal(t, 59.0, testutil.ToFloat64(m.Payout))
}

func TestHealthHandler(t *testing.T) {
	healthy := Handler(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	sick := Handler(func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	sick.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), "db down")
}
