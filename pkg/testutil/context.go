package testutil

import (
	"context"
	"net/http"

	"carepath/internal/platform/middleware"
)

// WithPrincipal adds an authenticated principal to the request context,
// simulating what the auth middleware does after validating a bearer token.
func WithPrincipal(req *http.Request, username string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyPrincipal, username)
	return req.WithContext(ctx)
}

// WithBearer sets an Authorization header with the given token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
