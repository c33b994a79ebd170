package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_predictor_predictions_total",
		Help: "Total number of member predictions served",
	}, []string{"source", "model", "outcome"})

	fallbackServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_predictor_fallback_requests_total",
		Help: "Total number of predict requests answered by the heuristic fallback",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_predictor_cache_lookups_total",
		Help: "Prediction cache lookups by result",
	}, []string{"result"})

	trainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_predictor_training_runs_total",
		Help: "Training runs by status",
	}, []string{"status"})

	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_predictor_training_duration_seconds",
		Help:    "Duration of successful training runs",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	cvAccuracy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "match_predictor_cv_accuracy",
		Help: "Mean cross-validated accuracy of the published models",
	}, []string{"model"})
)
