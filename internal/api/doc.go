// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

/*
Package api serves recommendations over HTTP using the Chi router.

# Endpoints

	GET /recommendations/user/{userID}?n=100   personal top-N
	GET /popular/user/{userID}?time=6147       streamers live at an instant
	GET /health/live                           liveness
	GET /health/ready                          503 until a model is loaded
	GET /status                                serving model metadata
	GET /metrics                               Prometheus

Every JSON response uses one envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}
	{"status":"error","data":null,"metadata":{...},"error":{"code":"USER_NOT_FOUND","message":"..."}}

# Middleware

Applied to all routes: request id with logging context, RealIP, Recoverer,
CORS (go-chi/cors). The recommendation routes add per-IP rate limiting
(go-chi/httprate) and Prometheus instrumentation.
*/
package api
