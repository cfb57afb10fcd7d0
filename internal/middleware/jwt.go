package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/octobees/sift-profiler/internal/auth"
)

// JWTConfig configures token extraction and the rejection response.
type JWTConfig struct {
	Manager *authpkg.JWTManager
	// QueryParam, when set, reads the token from the query string instead of
	// the Authorization header. Used by event-stream clients that cannot set headers.
	QueryParam string
	// OnUnauthorized writes the rejection. Defaults to a 401 JSON envelope.
	OnUnauthorized func(c echo.Context, reason string) error
}

// JWT validates bearer tokens and stores user metadata in the request context.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return JWTWithConfig(JWTConfig{Manager: manager})
}

// JWTWithConfig is JWT with a custom token source or rejection writer.
func JWTWithConfig(cfg JWTConfig) echo.MiddlewareFunc {
	reject := cfg.OnUnauthorized
	if reject == nil {
		reject = func(c echo.Context, reason string) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"status": "error", "message": reason})
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := extractToken(c, cfg.QueryParam)
			if reason != "" {
				return reject(c, reason)
			}

			claims, err := cfg.Manager.ParseToken(token)
			if err != nil {
				return reject(c, "invalid token")
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyUserEmail, claims.Email)
			c.Set(ContextKeyUserName, claims.Username)

			return next(c)
		}
	}
}

func extractToken(c echo.Context, queryParam string) (string, string) {
	if queryParam != "" {
		token := strings.TrimSpace(c.QueryParam(queryParam))
		if token == "" {
			return "", "missing token"
		}
		return token, ""
	}

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid authorization header"
	}
	return strings.TrimSpace(parts[1]), ""
}
