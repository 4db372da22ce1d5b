package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// CatalogCache abstracts the read-through catalog cache (Redis).
// A nil slice with a nil error means cache miss.
type CatalogCache interface {
	Get(ctx context.Context) ([]*domain.Product, error)
	Set(ctx context.Context, products []*domain.Product) error
	Invalidate(ctx context.Context) error
}

type productService struct {
	repo  ports.ProductRepository
	cache CatalogCache
	log   zerolog.Logger
}

// NewProductService returns a ProductService backed by repo with an optional
// read-through cache. Pass a nil cache to disable caching.
func NewProductService(repo ports.ProductRepository, cache CatalogCache, log zerolog.Logger) ports.ProductService {
	return &productService{repo: repo, cache: cache, log: log}
}

// List returns the full catalog, served from cache when possible. Cache
// failures degrade to a repository read.
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog cache read failed, falling back to store")
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}

// Create adds a catalog product and invalidates the cached listing.
func (s *productService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Features:    input.Features,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.log.Error().Err(err).Str("name", input.Name).Msg("product creation failed")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
		}
	}

	s.log.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}
