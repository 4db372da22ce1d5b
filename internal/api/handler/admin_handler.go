package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/core/ports"
)

// AdminHandler serves the admin-restricted listings. Routes using it must be
// gated by both the Auth and AdminOnly middleware.
type AdminHandler struct {
	accounts      ports.AccountRepository
	subscriptions ports.SubscriptionService
}

func NewAdminHandler(accounts ports.AccountRepository, subscriptions ports.SubscriptionService) *AdminHandler {
	return &AdminHandler{accounts: accounts, subscriptions: subscriptions}
}

// Users lists every account, password hashes omitted.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   accountSummary
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	accounts, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]accountSummary, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountSummary(a))
	}
	return c.JSON(http.StatusOK, resp)
}

// Subscriptions lists every subscription with user and product populated.
//
// @Summary      List all subscriptions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   subscriptionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/subscriptions [get]
func (h *AdminHandler) Subscriptions(c echo.Context) error {
	subs, err := h.subscriptions.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, toSubscriptionResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}
