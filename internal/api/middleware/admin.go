package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// AdminOnly is the authorization gate for admin-restricted routes. It
// re-fetches the account for the token's subject instead of trusting the
// token's embedded admin claim, so a demotion takes effect on the next
// request even while an older token is still valid. Compose after Auth.
func AdminOnly(accounts ports.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(CtxUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			account, err := accounts.FindByID(c.Request().Context(), userID)
			if errors.Is(err, domain.ErrUserNotFound) {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			if err != nil {
				// Store failure is a server error, not an authorization verdict.
				return err
			}
			if !account.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}

			return next(c)
		}
	}
}
