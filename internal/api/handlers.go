// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/cache"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/metrics"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/validation"
)

// Handler serves the HTTP endpoints from the models published in a Holder.
type Handler struct {
	holder      *recommend.Holder
	defaultN    int
	maxN        int
	popularTime int64
	startTime   time.Time

	// cache is nil when disabled.
	cache *cache.Cache[cachedRecommendations]
}

// cachedRecommendations remembers which model produced a list so entries
// from a replaced model are never served.
type cachedRecommendations struct {
	source *recommend.Recommender
	items  []recommend.Recommendation
}

// NewHandler creates a Handler.
func NewHandler(holder *recommend.Holder, cfg *config.Config) *Handler {
	h := &Handler{
		holder:      holder,
		defaultN:    cfg.Server.DefaultN,
		maxN:        cfg.Server.MaxN,
		popularTime: cfg.Data.PopularTime,
		startTime:   time.Now(),
	}
	if cfg.Server.CacheTTL > 0 {
		h.cache = cache.New[cachedRecommendations](cfg.Server.CacheTTL, cfg.Server.CacheSize)
	}
	return h
}

// RecommendationsResponse is the payload of the personal endpoint.
type RecommendationsResponse struct {
	UserID   int64                      `json:"user_id"`
	Personal []recommend.Recommendation `json:"personal"`
}

// PopularResponse is the payload of the popularity endpoint.
type PopularResponse struct {
	UserID           int64    `json:"user_id"`
	Time             int64    `json:"time"`
	PopularStreamers []string `json:"popular_streamers"`
}

// StatusResponse describes the serving model.
type StatusResponse struct {
	ModelLoaded        bool            `json:"model_loaded"`
	Params             *model.Params   `json:"params,omitempty"`
	Metadata           *model.Metadata `json:"metadata,omitempty"`
	PopularitySessions int             `json:"popularity_sessions"`
	Uptime             float64         `json:"uptime"`
}

// Recommendations handles GET /recommendations/user/{userID}?n=100.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, apiErr := h.parseRecommendationsRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	rec := h.holder.Current()
	if rec == nil {
		metrics.RecordRecommendation("no_model", time.Since(start))
		respondError(w, http.StatusServiceUnavailable, CodeModelNotLoaded, "No model loaded yet", nil)
		return
	}
	if !rec.Known(req.UserID) {
		metrics.RecordRecommendation("unknown_user", time.Since(start))
		respondError(w, http.StatusNotFound, CodeUserNotFound, "User not found", nil)
		return
	}

	personal, outcome := h.recommend(rec, req.UserID, req.N)
	metrics.RecordRecommendation(outcome, time.Since(start))
	logging.Ctx(r.Context()).Debug().
		Int64("user_id", req.UserID).
		Int("n", len(personal)).
		Msg("Served recommendations")

	respondSuccess(w, RecommendationsResponse{UserID: req.UserID, Personal: personal}, start)
}

// recommend serves from the cache when the entry came from rec.
func (h *Handler) recommend(rec *recommend.Recommender, userID int64, n int) ([]recommend.Recommendation, string) {
	if h.cache == nil {
		return rec.Recommend(userID, n), "ok"
	}
	key := strconv.FormatInt(userID, 10) + ":" + strconv.Itoa(n)
	if c, ok := h.cache.Get(key); ok && c.source == rec {
		return c.items, "cached"
	}
	items := rec.Recommend(userID, n)
	h.cache.Set(key, cachedRecommendations{source: rec, items: items})
	return items, "ok"
}

// Popular handles GET /popular/user/{userID}?time=6147&limit=0.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, apiErr := h.parsePopularRequest(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	pop := h.holder.Popularity()
	if pop == nil {
		respondError(w, http.StatusServiceUnavailable, CodeModelNotLoaded, "No interaction data loaded yet", nil)
		return
	}

	respondSuccess(w, PopularResponse{
		UserID:           req.UserID,
		Time:             req.Time,
		PopularStreamers: pop.TopNames(req.Time, req.Limit),
	}, start)
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady returns 503 until a model has been published.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	ready := h.holder.Ready()
	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}
	respondJSON(w, statusCode, &APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"model_loaded": ready,
			"uptime":       time.Since(h.startTime).Seconds(),
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Status reports the parameters and metadata of the serving model.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	resp := StatusResponse{Uptime: time.Since(h.startTime).Seconds()}
	if rec := h.holder.Current(); rec != nil {
		m := rec.Model()
		resp.ModelLoaded = true
		resp.Params = &m.Params
		resp.Metadata = &m.Metadata
	}
	if pop := h.holder.Popularity(); pop != nil {
		resp.PopularitySessions = pop.Len()
	}
	respondSuccess(w, resp, start)
}

// NotFound is the router fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("No route for %s", r.URL.Path), nil)
}

// MethodNotAllowed is the router fallback for known paths.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
}

type recommendationsRequest struct {
	UserID int64 `json:"user_id"`
	N      int   `json:"n" validate:"min=1"`
}

type popularRequest struct {
	UserID int64 `json:"user_id"`
	Time   int64 `json:"time"`
	Limit  int   `json:"limit" validate:"gte=0"`
}

func (h *Handler) parseRecommendationsRequest(r *http.Request) (*recommendationsRequest, *validation.APIError) {
	userID, apiErr := parseUserID(r)
	if apiErr != nil {
		return nil, apiErr
	}
	n, apiErr := intParam(r, "n", h.defaultN)
	if apiErr != nil {
		return nil, apiErr
	}

	req := &recommendationsRequest{UserID: userID, N: n}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err.ToAPIError()
	}
	if req.N > h.maxN {
		return nil, &validation.APIError{
			Code:    CodeValidationError,
			Message: fmt.Sprintf("n must be at most %d", h.maxN),
		}
	}
	return req, nil
}

func (h *Handler) parsePopularRequest(r *http.Request) (*popularRequest, *validation.APIError) {
	userID, apiErr := parseUserID(r)
	if apiErr != nil {
		return nil, apiErr
	}
	at := h.popularTime
	if s := r.URL.Query().Get("time"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &validation.APIError{Code: CodeValidationError, Message: "time must be an integer"}
		}
		at = v
	}
	limit, apiErr := intParam(r, "limit", 0)
	if apiErr != nil {
		return nil, apiErr
	}

	req := &popularRequest{UserID: userID, Time: at, Limit: limit}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err.ToAPIError()
	}
	return req, nil
}

func parseUserID(r *http.Request) (int64, *validation.APIError) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &validation.APIError{Code: CodeValidationError, Message: "user_id must be an integer"}
	}
	return id, nil
}

func intParam(r *http.Request, name string, def int) (int, *validation.APIError) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &validation.APIError{Code: CodeValidationError, Message: name + " must be an integer"}
	}
	return v, nil
}
