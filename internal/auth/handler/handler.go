package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carepath/internal/auth"
	"carepath/internal/platform/middleware"
	"carepath/internal/transport/http/shared"
	dErrors "carepath/pkg/domain-errors"
)

// Service defines the interface for credential verification.
type Service interface {
	Login(ctx context.Context, username, password string) (*auth.TokenResult, error)
}

// Handler exposes the token endpoint.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

// New creates a new auth Handler.
func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/token", h.handleToken)
}

// handleToken implements the OAuth2 password grant shape the original client
// speaks: form-encoded username/password in, bearer token out.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and password are required"))
		return
	}

	result, err := h.auth.Login(ctx, username, password)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) {
			h.logger.WarnContext(ctx, "login rejected",
				"username", username,
				"request_id", middleware.GetRequestID(ctx),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "login failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}
