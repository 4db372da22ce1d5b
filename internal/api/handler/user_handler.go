package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/api/middleware"
	"github.com/fotf/subscription-system/internal/core/ports"
)

type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Me returns the authenticated account, hash omitted.
//
// @Summary      Get the current account
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountSummary
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	account, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAccountSummary(account))
}
