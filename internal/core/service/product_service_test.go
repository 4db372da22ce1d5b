package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fotf/subscription-system/internal/core/domain"
	"github.com/fotf/subscription-system/internal/core/ports"
	"github.com/fotf/subscription-system/pkg/logger"
)

type stubCatalogCache struct {
	cached      []*domain.Product
	failing     bool
	sets        int
	invalidates int
}

func (c *stubCatalogCache) Get(_ context.Context) ([]*domain.Product, error) {
	if c.failing {
		return nil, errors.New("cache down")
	}
	return c.cached, nil
}

func (c *stubCatalogCache) Set(_ context.Context, products []*domain.Product) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.cached = products
	c.sets++
	return nil
}

func (c *stubCatalogCache) Invalidate(_ context.Context) error {
	if c.failing {
		return errors.New("cache down")
	}
	c.cached = nil
	c.invalidates++
	return nil
}

func newTestProductService(repo *stubProductRepo, cache CatalogCache) ports.ProductService {
	logger.Reset()
	log := logger.Init(logger.Options{Level: "error"})
	return NewProductService(repo, cache, log)
}

func TestProductService_List_PopulatesCache(t *testing.T) {
	repo := newStubProductRepo(&domain.Product{ID: "prod-1", Name: "Gold"})
	cache := &stubCatalogCache{}
	svc := newTestProductService(repo, cache)

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if cache.sets != 1 {
		t.Fatalf("expected the miss to populate the cache")
	}

	// Second read is served from cache; delete from the repo to prove it.
	delete(repo.byID, "prod-1")
	products, err = svc.List(context.Background())
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected cached listing, got %d products", len(products))
	}
}

func TestProductService_List_CacheFailureFallsBack(t *testing.T) {
	repo := newStubProductRepo(&domain.Product{ID: "prod-1", Name: "Gold"})
	svc := newTestProductService(repo, &stubCatalogCache{failing: true})

	products, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list with broken cache: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
}

func TestProductService_Create_InvalidatesCache(t *testing.T) {
	repo := newStubProductRepo()
	cache := &stubCatalogCache{cached: []*domain.Product{{ID: "stale"}}}
	svc := newTestProductService(repo, cache)

	created, err := svc.Create(context.Background(), ports.CreateProductInput{Name: "Gold", Price: 9.99})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if cache.invalidates != 1 {
		t.Fatalf("expected cache invalidation on create")
	}
}

func TestProductService_NilCache(t *testing.T) {
	repo := newStubProductRepo(&domain.Product{ID: "prod-1", Name: "Gold"})
	svc := newTestProductService(repo, nil)

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("list without cache: %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateProductInput{Name: "Silver", Price: 4.99}); err != nil {
		t.Fatalf("create without cache: %v", err)
	}
}
