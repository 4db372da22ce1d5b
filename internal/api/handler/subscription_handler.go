package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/api/middleware"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// SubscriptionHandler handles HTTP requests for a user's own subscriptions.
type SubscriptionHandler struct {
	service ports.SubscriptionService
}

func NewSubscriptionHandler(service ports.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// List returns the authenticated user's subscriptions, products populated.
//
// @Summary      List own subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   subscriptionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /subscriptions [get]
func (h *SubscriptionHandler) List(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	subs, err := h.service.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, toSubscriptionResponse(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create starts a subscription for the authenticated user.
//
// @Summary      Create a subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSubscriptionRequest  true  "Subscription details"
// @Success      201   {object}  subscriptionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /subscriptions [post]
func (h *SubscriptionHandler) Create(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req createSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub, err := h.service.Create(c.Request().Context(), ports.CreateSubscriptionInput{
		UserID:          userID,
		ProductID:       req.ProductID,
		DiscordUsername: req.DiscordUsername,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toSubscriptionResponse(sub))
}

// Cancel flags the subscription to lapse at the end of the current period.
//
// @Summary      Cancel a subscription at period end
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Subscription ID"
// @Success      200  {object}  subscriptionResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	sub, err := h.service.Cancel(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSubscriptionResponse(sub))
}

// requireUserID extracts the subject injected by the Auth middleware. Its
// presence proves the middleware ran; a blank value means a wiring mistake,
// reported as 401 rather than a panic downstream.
func requireUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return userID, nil
}
