package match

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	candidatesScoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idreclaim_match_candidates_scored_total",
		Help: "Candidates scored across all matching invocations",
	})

	matchesAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idreclaim_match_accepted_total",
		Help: "Candidates accepted as matches",
	})

	matchScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "idreclaim_match_score",
		Help:    "Distribution of computed match scores",
		Buckets: []float64{0, 5, 10, 20, 30, 40, 60, 80, 100},
	})
)
