package jwttoken

import (
	"carepath/internal/platform/middleware"
)

// MiddlewareAdapter adapts JWTService to the middleware.TokenValidator
// interface so the platform middleware stays decoupled from jwt-go types.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		Username: claims.Username,
		TokenID:  claims.ID,
	}, nil
}
