package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// TierStore reads volume tiers. It implements pricing.TierStore.
type TierStore struct {
	Pool *pgxpool.Pool
}

const candidateTiersSQL = `
SELECT id, scope, sku_code, category_id, min_qty, discount_bps, discount_amount,
       effective_from, effective_to, is_active
FROM volume_tiers
WHERE is_active
  AND ((scope = 'sku' AND sku_code = $1)
       OR (scope = 'category' AND category_id = $2))
ORDER BY min_qty DESC, id`

// CandidateTiers returns active tiers whose scope may target the product.
func (s TierStore) CandidateTiers(ctx context.Context, p pricing.Product) ([]pricing.VolumeTier, error) {
	if s.Pool == nil {
		return nil, errors.New("tier store not configured")
	}
	var categoryID any
	if p.CategoryID != nil {
		categoryID = *p.CategoryID
	}
	rows, err := s.Pool.Query(ctx, candidateTiersSQL, p.Code, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query tiers: %w", err)
	}
	defer rows.Close()

	var tiers []pricing.VolumeTier
	for rows.Next() {
		var (
			tier       pricing.VolumeTier
			skuCode    pgtype.Text
			categoryID pgtype.UUID
			bps        pgtype.Int4
			amount     pgtype.Int8
			from, to   pgtype.Timestamptz
		)
		if err := rows.Scan(&tier.ID, &tier.Scope, &skuCode, &categoryID, &tier.MinQty, &bps, &amount,
			&from, &to, &tier.Active); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tier.SKUCode = skuCode.String
		tier.CategoryID = uuidPtr(categoryID)
		tier.DiscountBps = int32Ptr(bps)
		tier.DiscountAmount = int64Ptr(amount)
		tier.ValidFrom = timePtr(from)
		tier.ValidTo = timePtr(to)
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tiers: %w", err)
	}
	return tiers, nil
}
