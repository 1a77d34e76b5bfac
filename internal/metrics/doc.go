// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

/*
Package metrics registers the Prometheus metrics exported by StreamRec.

All collectors are created with promauto against the default registry and are
served at /metrics by the API router.

# Available Metrics

Ingest and training:
  - streamrec_ingest_records_total{result}: accepted, rejected, filtered
  - streamrec_training_duration_seconds: wall time of a full training run
  - streamrec_als_iterations_total: completed ALS iterations
  - streamrec_training_runs_total{result}: success, error

Model:
  - streamrec_model_users, streamrec_model_items: size of the serving model
  - streamrec_model_loads_total{source,result}: file, retrain
  - streamrec_model_trained_timestamp_seconds: TrainedAt of the serving model

Serving:
  - streamrec_recommendations_total{outcome}: ok, unknown_user, no_model
  - streamrec_recommendation_duration_seconds: scoring latency
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Export:
  - streamrec_export_writes_total{backend,result}
  - streamrec_export_duration_seconds{backend}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
