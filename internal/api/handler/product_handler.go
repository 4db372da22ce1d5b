package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fotf/subscription-system/internal/core/ports"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List returns the full catalog. Public: no auth required.
//
// @Summary      List catalog products
// @Tags         products
// @Produce      json
// @Success      200  {array}   productResponse
// @Failure      500  {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create adds a catalog product. Admin only.
//
// @Summary      Create a catalog product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.Create(c.Request().Context(), ports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Features:    req.Features,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toProductResponse(product))
}
