package metrics

import "github.com/prometheus/client_golang/prometheus"

// DuelMetrics agrupa os contadores do engine de partidas
type DuelMetrics struct {
	BetsPlaced      *prometheus.CounterVec
	BetsRejected    *prometheus.CounterVec
	MatchesResolved *prometheus.CounterVec
	Commission      prometheus.Counter
	Payout          prometheus.Counter
}

// NewDuelMetrics cria e registra os contadores em reg
func NewDuelMetrics(reg prometheus.Registerer) *DuelMetrics {
	m := &DuelMetrics{
		BetsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duel_bets_placed_total", Help: "apostas aceitas por moeda",
		}, []string{"currency"}),
		BetsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duel_bets_rejected_total", Help: "apostas recusadas por motivo",
		}, []string{"reason"}),
		MatchesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duel_matches_resolved_total", Help: "partidas liquidadas",
		}, []string{"currency", "commission_kind"}),
		Commission: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duel_commission_stars_total", Help: "comissão retirada (equivalente em stars)",
		}),
		Payout: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duel_payout_stars_total", Help: "stars pagos aos vencedores",
		}),
	}
	reg.MustRegister(m.BetsPlaced, m.BetsRejected, m.MatchesResolved, m.Commission, m.Payout)
	return m
}

func (m *DuelMetrics) BetPlaced(currency string) {
	m.BetsPlaced.WithLabelValues(currency).Inc()
}

func (m *DuelMetrics) BetRejected(code string) {
	m.BetsRejected.WithLabelValues(code).Inc()
}

func (m *DuelMetrics) MatchResolved(currency, commissionKind string, commission, payout int64) {
	m.MatchesResolved.WithLabelValues(currency, commissionKind).Inc()
	m.Commission.Add(float64(commission))
	m.Payout.Add(float64(payout))
}
