// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingest and training
	IngestRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamrec_ingest_records_total",
			Help: "Interaction records read, by result",
		},
		[]string{"result"}, // accepted, rejected, filtered
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streamrec_training_duration_seconds",
			Help:    "Duration of a complete training run in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		},
	)

	ALSIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streamrec_als_iterations_total",
			Help: "Completed ALS iterations across all training runs",
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamrec_training_runs_total",
			Help: "Training runs by result",
		},
		[]string{"result"},
	)

	// Model
	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamrec_model_users",
			Help: "Users in the serving model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamrec_model_items",
			Help: "Streamers in the serving model",
		},
	)

	ModelTrainedTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamrec_model_trained_timestamp_seconds",
			Help: "Unix time the serving model was trained",
		},
	)

	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamrec_model_loads_total",
			Help: "Model loads by source and result",
		},
		[]string{"source", "result"},
	)

	// Serving
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamrec_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // ok, cached, unknown_user, no_model
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streamrec_recommendation_duration_seconds",
			Help:    "Time to score and rank items for one user",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Export
	ExportWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamrec_export_writes_total",
			Help: "Keys written to the export store, by backend and result",
		},
		[]string{"backend", "result"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamrec_export_duration_seconds",
			Help:    "Duration of a full export run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordIngest records the outcome counts of one encode pass.
func RecordIngest(accepted, rejected, filtered int) {
	IngestRecords.WithLabelValues("accepted").Add(float64(accepted))
	IngestRecords.WithLabelValues("rejected").Add(float64(rejected))
	IngestRecords.WithLabelValues("filtered").Add(float64(filtered))
}

// RecordTraining records one training run.
func RecordTraining(duration time.Duration, err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("error").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordModelLoad records a load attempt from source ("file" or "retrain").
func RecordModelLoad(source string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ModelLoads.WithLabelValues(source, result).Inc()
}

// SetModel publishes the size and age of the serving model.
func SetModel(users, items int, trainedAt time.Time) {
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	ModelTrainedTimestamp.Set(float64(trainedAt.Unix()))
}

// RecordRecommendation records one scoring call.
func RecordRecommendation(outcome string, duration time.Duration) {
	Recommendations.WithLabelValues(outcome).Inc()
	if outcome == "ok" || outcome == "cached" {
		RecommendationDuration.Observe(duration.Seconds())
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordExportWrites adds written and failed key counts for backend.
func RecordExportWrites(backend string, written, failed int) {
	ExportWrites.WithLabelValues(backend, "success").Add(float64(written))
	ExportWrites.WithLabelValues(backend, "error").Add(float64(failed))
}

// RecordCircuitBreakerTransition updates the state gauge and transition count.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
