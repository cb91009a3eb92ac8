package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ProductDetail is the public product payload served to the cart UI.
type ProductDetail struct {
	ID         string         `json:"id"`
	Code       string         `json:"code"`
	CategoryID *string        `json:"categoryId,omitempty"`
	Tags       []string       `json:"tags"`
	ListPrice  pricing.Money  `json:"listPrice"`
	Stock      int            `json:"stock"`
}

// Service assembles product DTOs with optional response caching. Pricing
// resolution reads the store directly and never goes through the cache, so
// rule evaluation always sees fresh stock and prices.
type Service struct {
	store pricing.Catalog
	cache *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store pricing.Catalog
	Cache *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: product store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache}, nil
}

// GetProduct returns the product detail for a product code.
func (s *Service) GetProduct(ctx context.Context, code string) (ProductDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ProductDetail{}, &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    "product code is required",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	cacheKey := detailCacheKey(code)
	if s.cache != nil {
		var cached ProductDetail
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	product, err := s.store.Product(ctx, code)
	if err != nil {
		if errors.Is(err, pricing.ErrProductNotFound) {
			return ProductDetail{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return ProductDetail{}, fmt.Errorf("get product: %w", err)
	}
	detail := ProductDetail{
		ID:        product.ID.String(),
		Code:      product.Code,
		Tags:      product.Tags,
		ListPrice: product.ListPrice,
		Stock:     product.Stock,
	}
	if detail.Tags == nil {
		detail.Tags = []string{}
	}
	if product.CategoryID != nil {
		category := product.CategoryID.String()
		detail.CategoryID = &category
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, detail)
	}
	return detail, nil
}

func detailCacheKey(code string) string {
	return "catalog:products:detail:" + code
}
