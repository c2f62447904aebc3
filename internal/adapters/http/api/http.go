// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/mobicost/internal/app"
	"github.com/okian/mobicost/internal/domain/inference"
	"github.com/okian/mobicost/internal/domain/model"
	"github.com/okian/mobicost/internal/domain/tier"
	"github.com/okian/mobicost/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, spec model.RawSpec) (model.Prediction, error)
	PredictBatch(ctx context.Context, specs []model.RawSpec) ([]model.Outcome, error)
	Preset(ctx context.Context, id string) (tier.Tier, model.RawSpec, error)
	Ready() model.Readiness
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	catalogHandler   *CatalogHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		catalogHandler:   NewCatalogHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /v1/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("POST /v1/predict/batch", MetricsMiddleware(s.predictHandler.HandleBatch, "predict_batch"))
	mux.HandleFunc("GET /v1/tiers", MetricsMiddleware(s.catalogHandler.HandleTiers, "tiers"))
	mux.HandleFunc("GET /v1/tiers/{id}", MetricsMiddleware(s.catalogHandler.HandleTier, "tier"))
	mux.HandleFunc("GET /v1/presets/{id}", MetricsMiddleware(s.catalogHandler.HandlePreset, "preset"))
	mux.HandleFunc("GET /v1/features", MetricsMiddleware(s.catalogHandler.HandleFeatures, "features"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status and code its kind maps to.
func fail(ctx context.Context, w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(ctx, "request failed",
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

// statusOf maps an error to its HTTP status and machine-readable code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, inference.ErrTransformFailure):
		return http.StatusBadRequest, "transform_failure"
	case errors.Is(err, inference.ErrInvalidFeatureVector):
		return http.StatusBadRequest, "invalid_feature_vector"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, tier.ErrUnknownTier):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, inference.ErrClassifierFailure):
		return http.StatusInternalServerError, "classifier_failure"
	case errors.Is(err, inference.ErrMissingArtifact):
		return http.StatusServiceUnavailable, "missing_artifact"
	case errors.Is(err, ErrUnavailable), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decode reads a bounded JSON body into v. Syntax errors and type errors on
// the envelope are reported as bad requests.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: %s must be a %s", ErrBadRequest, typeErr.Field, typeErr.Type)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
