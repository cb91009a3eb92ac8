package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ProductStore reads catalog data needed for pricing. It implements
// pricing.Catalog.
type ProductStore struct {
	Pool *pgxpool.Pool
}

const productByCodeSQL = `
SELECT p.id, p.code, p.category_id, p.list_price, p.stock,
       COALESCE(array_agg(t.tag ORDER BY t.tag) FILTER (WHERE t.tag IS NOT NULL), '{}')
FROM products p
LEFT JOIN product_tags t ON t.product_id = p.id
WHERE p.code = $1
GROUP BY p.id`

// Product returns the product identified by its code. A missing row maps to
// pricing.ErrProductNotFound.
func (s ProductStore) Product(ctx context.Context, code string) (pricing.Product, error) {
	if s.Pool == nil {
		return pricing.Product{}, errors.New("product store not configured")
	}
	var (
		id         pgtype.UUID
		categoryID pgtype.UUID
		product    pricing.Product
	)
	row := s.Pool.QueryRow(ctx, productByCodeSQL, code)
	if err := row.Scan(&id, &product.Code, &categoryID, &product.ListPrice, &product.Stock, &product.Tags); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Product{}, fmt.Errorf("product %q: %w", code, pricing.ErrProductNotFound)
		}
		return pricing.Product{}, fmt.Errorf("get product %q: %w", code, err)
	}
	product.ID = uuidValue(id)
	product.CategoryID = uuidPtr(categoryID)
	return product, nil
}
