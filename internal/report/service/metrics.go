package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idreclaim_report_submissions_total",
		Help: "Report submissions by kind",
	}, []string{"kind"})

	matchedSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idreclaim_report_matched_submissions_total",
		Help: "Submissions that produced at least one immediate match",
	}, []string{"kind"})
)
