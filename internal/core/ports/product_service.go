package ports

import (
	"context"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// CreateProductInput carries the data needed to add a catalog product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Features    []string
}

type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
}
