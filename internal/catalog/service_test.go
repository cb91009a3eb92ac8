package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

type countingStore struct {
	products map[string]pricing.Product
	calls    int
}

func (s *countingStore) Product(_ context.Context, code string) (pricing.Product, error) {
	s.calls++
	p, ok := s.products[code]
	if !ok {
		return pricing.Product{}, pricing.ErrProductNotFound
	}
	return p, nil
}

func testStore() *countingStore {
	category := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	return &countingStore{products: map[string]pricing.Product{
		"SKU-RICE-5KG": {
			ID:         uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Code:       "SKU-RICE-5KG",
			CategoryID: &category,
			Tags:       []string{"staple"},
			ListPrice:  78_000,
			Stock:      500,
		},
	}}
}

func TestGetProduct(t *testing.T) {
	store := testStore()
	svc, err := NewService(ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	detail, err := svc.GetProduct(context.Background(), "SKU-RICE-5KG")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if detail.Code != "SKU-RICE-5KG" || detail.ListPrice != 78_000 || detail.Stock != 500 {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if detail.CategoryID == nil || *detail.CategoryID != "33333333-3333-3333-3333-333333333333" {
		t.Fatalf("categoryId = %v", detail.CategoryID)
	}
	if len(detail.Tags) != 1 || detail.Tags[0] != "staple" {
		t.Fatalf("tags = %v", detail.Tags)
	}
}

func TestGetProductErrors(t *testing.T) {
	svc, err := NewService(ServiceConfig{Store: testStore()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), "  ")
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("blank code: err = %v", err)
	}

	_, err = svc.GetProduct(context.Background(), "SKU-GHOST")
	if !errors.As(err, &appErr) || appErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("missing product: err = %v", err)
	}
}

func TestGetProductUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := testStore()
	svc, err := NewService(ServiceConfig{
		Store: store,
		Cache: NewCache(client, time.Minute),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.GetProduct(context.Background(), "SKU-RICE-5KG"); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if _, err := svc.GetProduct(context.Background(), "SKU-RICE-5KG"); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected one store read, got %d", store.calls)
	}
	if !mr.Exists("catalog:products:detail:SKU-RICE-5KG") {
		t.Fatalf("expected cached detail key")
	}
}

func TestProductHandler(t *testing.T) {
	svc, err := NewService(ServiceConfig{Store: testStore()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler := NewHandler(HandlerConfig{Service: svc})

	r := chi.NewRouter()
	r.Get("/api/v1/products/{code}", handler.Product)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/SKU-RICE-5KG", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/SKU-GHOST", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
