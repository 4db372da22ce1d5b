package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/api/metrics"
	"github.com/fotf/subscription-system/internal/core/ports"
	"github.com/fotf/subscription-system/internal/core/service"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxIsAdmin  = "is_admin"
)

// Auth is the authentication gate: it requires a bearer token and injects the
// verified claims into the request context. A missing token is 401; a token
// that fails verification — malformed, expired or badly signed alike — is 403.
// The identity claims are trusted as-is; only the admin gate consults the
// store.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "invalid or expired token")
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxIsAdmin, claims.IsAdmin)

			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, service.ErrTokenSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
