package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsContextKey is the context key for validated API claims.
	ClaimsContextKey contextKey = "api_claims"
)

// AuthConfig holds authentication middleware configuration.
type AuthConfig struct {
	// Validator checks bearer tokens. nil disables auth entirely.
	Validator *auth.JWTValidator

	// Skipper defines a function to skip auth for certain routes.
	Skipper func(c echo.Context) bool
}

// AuthMiddleware validates the Authorization bearer token and stores the
// claims in the request context. protected routes reject requests without
// a valid token.
func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Validator == nil {
				return next(c)
			}
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			token := auth.ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			claims, err := config.Validator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(string(ClaimsContextKey), claims)
			return next(c)
		}
	}
}

// GetClaims retrieves the validated API claims from context.
// returns nil when the request was not authenticated.
func GetClaims(c echo.Context) *auth.APIClaims {
	if val := c.Get(string(ClaimsContextKey)); val != nil {
		if claims, ok := val.(*auth.APIClaims); ok {
			return claims
		}
	}
	return nil
}

// PublicRoutesSkipper returns a skipper function that skips auth for public routes.
func PublicRoutesSkipper(publicPaths ...string) func(echo.Context) bool {
	pathSet := make(map[string]bool)
	for _, p := range publicPaths {
		pathSet[p] = true
	}

	return func(c echo.Context) bool {
		return pathSet[c.Path()]
	}
}
