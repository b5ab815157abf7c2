package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validation"
)

const (
	keyAllProducts = "products:all"
	keyCategories  = "products:categories"

	msgProductNotFound = "Product not found"
)

type ProductService struct {
	Repo   repo.Products
	Search search.Index
	Cache  cache.Cache
	Events events.Publisher
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return readThrough(ctx, s.Cache, keyAllProducts, s.Repo.ListProducts)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound(msgProductNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return readThrough(ctx, s.Cache, keyCategories, s.Repo.Categories)
}

// readThrough serves key from the products tag or loads and caches it. The
// tag generation is taken before load so a write that lands in between keeps
// the stale result out of the cache.
func readThrough[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) (T, error)) (T, error) {
	l := logging.FromContext(ctx).With("cache_key", key)

	var cached T
	if ok, err := c.Get(ctx, key, &cached); err != nil {
		l.Warn("cache_get_failed", "error", err)
	} else if ok {
		return cached, nil
	}

	gen, genErr := c.Generation(ctx, cache.TagProducts)
	if genErr != nil {
		l.Warn("cache_generation_failed", "error", genErr)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		return v, nil
	}
	switch err := c.Set(ctx, cache.TagProducts, gen, key, v); {
	case errors.Is(err, cache.ErrStale):
		l.Debug("cache_set_skipped", "reason", "invalidated during load")
	case err != nil:
		l.Warn("cache_set_failed", "error", err)
	}
	return v, nil
}

func (s *ProductService) SearchProducts(ctx context.Context, q string, from, size int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, apperr.Validation("Search query is required")
	}
	total, items, err := s.Search.Search(ctx, q, from, size)
	if err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			return 0, nil, apperr.Wrap(apperr.ErrUnavailable, "Search is not available", err)
		}
		return 0, nil, err
	}
	return total, items, nil
}

func normalizeCreate(req *transport.CreateProductRequest) {
	req.Title = strings.ToLower(strings.TrimSpace(req.Title))
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	req.Image = strings.TrimSpace(req.Image)
}

func normalizePatch(req *transport.PatchProductRequest) {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	req.Title = trim(req.Title)
	if req.Title != nil {
		v := strings.ToLower(*req.Title)
		req.Title = &v
	}
	req.Description = trim(req.Description)
	req.Category = trim(req.Category)
	req.Image = trim(req.Image)
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	normalizeCreate(&req)
	if err := validation.Struct(req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return nil, err
	}

	p := req.Product()
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductCreated, &p)
	l.Info("create_product_success", "product_id", p.ID)
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req transport.PatchProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.update", "product_id", id)

	normalizePatch(&req)
	if err := validation.Struct(req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return nil, err
	}

	p, err := s.Repo.UpdateProduct(ctx, id, req.Patch())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("product_patch_error", "status", 404, "reason", "product not found")
			return nil, apperr.NotFound(msgProductNotFound)
		}
		l.Error("product_patch_error", "status", 500, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductUpdated, p)
	l.Info("patch_product_success")
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.delete", "product_id", id)

	p, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product not found")
			return nil, apperr.NotFound(msgProductNotFound)
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return nil, err
	}

	s.afterWrite(ctx, events.ProductDeleted, p)
	l.Info("delete_product_success")
	return p, nil
}

// afterWrite syncs the search index, drops cached reads and publishes the
// event. None of it can fail the request.
func (s *ProductService) afterWrite(ctx context.Context, typ string, p *models.Product) {
	l := logging.FromContext(ctx)

	var err error
	if typ == events.ProductDeleted {
		err = s.Search.DeleteProduct(ctx, p.ID)
	} else {
		err = s.Search.IndexProduct(ctx, *p)
	}
	if err != nil {
		l.Warn("search_sync_failed", "product_id", p.ID, "error", err)
	}

	if err := s.Cache.InvalidateTag(ctx, cache.TagProducts); err != nil {
		l.Warn("cache_invalidate_failed", "tag", cache.TagProducts, "error", err)
	}

	var payload any = p
	if typ == events.ProductDeleted {
		payload = nil
	}
	events.Emit(ctx, s.Events, events.TopicProducts, events.NewEvent(typ, p.ID, payload))
}
