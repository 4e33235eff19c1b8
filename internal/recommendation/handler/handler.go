package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carepath/internal/patient"
	"carepath/internal/platform/middleware"
	"carepath/internal/recommendation"
	"carepath/internal/recommendation/service"
	"carepath/internal/transport/http/shared"
	dErrors "carepath/pkg/domain-errors"
)

// Service defines the interface for evaluation operations.
type Service interface {
	Evaluate(ctx context.Context, req service.EvaluateRequest) (*service.EvaluateResult, error)
	GetByID(ctx context.Context, id string) (*recommendation.Recommendation, error)
	ListPatients(ctx context.Context) ([]*patient.Patient, error)
	ListRecommendations(ctx context.Context) ([]*recommendation.Recommendation, error)
}

// EvaluateRequest is the JSON body for POST /evaluate.
type EvaluateRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age"`
	BMI           float64 `json:"bmi"`
	ChronicPain   bool    `json:"chronic_pain"`
	RecentSurgery bool    `json:"recent_surgery"`
}

// Handler handles evaluation endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.TokenValidator
}

// New creates a new evaluation Handler.
func New(service Service, logger *slog.Logger, jwtValidator middleware.TokenValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the evaluation routes with the chi router. Evaluate and
// lookup require a bearer token; the listing endpoints stay open for
// debugging, matching the original service.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Timeout(30 * time.Second))
		protected.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		protected.Post("/evaluate", h.handleEvaluate)
		protected.Get("/recommendation/{id}", h.handleGetRecommendation)
	})

	r.Get("/patients", h.handleListPatients)
	r.Get("/recommendations", h.handleListRecommendations)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid evaluate request", "request_id", requestID, "error", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid evaluate request", "request_id", requestID, "error", err)
		shared.WriteError(w, err)
		return
	}

	result, err := h.service.Evaluate(ctx, service.EvaluateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Attributes: patient.Attributes{
			Age:           req.Age,
			BMI:           req.BMI,
			ChronicPain:   req.ChronicPain,
			RecentSurgery: req.RecentSurgery,
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed", "request_id", requestID, "error", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if id == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "recommendation id is required"))
		return
	}

	rec, err := h.service.GetByID(ctx, id)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "recommendation lookup failed",
				"request_id", middleware.GetRequestID(ctx), "id", id, "error", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if patients == nil {
		patients = []*patient.Patient{}
	}
	shared.WriteJSON(w, http.StatusOK, patients)
}

func (h *Handler) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListRecommendations(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if recs == nil {
		recs = []*recommendation.Recommendation{}
	}
	shared.WriteJSON(w, http.StatusOK, recs)
}

func (r EvaluateRequest) validate() error {
	if r.FirstName == "" || r.LastName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "first_name and last_name are required")
	}
	if r.Age < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "age must not be negative")
	}
	if r.BMI <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "bmi must be positive")
	}
	return nil
}
