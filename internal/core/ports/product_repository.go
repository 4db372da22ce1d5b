package ports

import (
	"context"

	"github.com/fotf/subscription-system/internal/core/domain"
)

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}
