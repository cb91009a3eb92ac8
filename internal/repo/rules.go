package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// RuleStore reads price rules. It implements pricing.RuleStore.
type RuleStore struct {
	Pool *pgxpool.Pool
}

// Candidates are prefiltered by activity and scope for efficiency; the
// engine re-validates every returned rule against scope, time window, and
// quantity band regardless.
const candidateRulesSQL = `
SELECT id, scope, sku_code, category_id, tag, action_type, action_value,
       min_qty, max_qty, effective_from, effective_to, priority, is_active
FROM price_rules
WHERE is_active
  AND (scope = 'all'
       OR (scope = 'sku' AND sku_code = $1)
       OR (scope = 'category' AND category_id = $2)
       OR (scope = 'tag' AND tag = ANY($3)))
ORDER BY priority, id`

// CandidateRules returns active rules whose scope may target the product.
func (s RuleStore) CandidateRules(ctx context.Context, p pricing.Product) ([]pricing.PriceRule, error) {
	if s.Pool == nil {
		return nil, errors.New("rule store not configured")
	}
	var categoryID any
	if p.CategoryID != nil {
		categoryID = *p.CategoryID
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	rows, err := s.Pool.Query(ctx, candidateRulesSQL, p.Code, categoryID, tags)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []pricing.PriceRule
	for rows.Next() {
		var (
			rule       pricing.PriceRule
			skuCode    pgtype.Text
			categoryID pgtype.UUID
			tag        pgtype.Text
			value      pgtype.Int8
			minQty     pgtype.Int4
			maxQty     pgtype.Int4
			from, to   pgtype.Timestamptz
		)
		if err := rows.Scan(&rule.ID, &rule.Scope, &skuCode, &categoryID, &tag, &rule.Action, &value,
			&minQty, &maxQty, &from, &to, &rule.Priority, &rule.Active); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.SKUCode = skuCode.String
		rule.CategoryID = uuidPtr(categoryID)
		rule.Tag = tag.String
		rule.Value = int64Ptr(value)
		rule.MinQty = intPtr(minQty)
		rule.MaxQty = intPtr(maxQty)
		rule.ValidFrom = timePtr(from)
		rule.ValidTo = timePtr(to)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return rules, nil
}
