package pricing

import (
	"time"

	"github.com/google/uuid"
)

// PriceRule is a scoped, time-bounded, quantity-bounded discount or override.
// Lower Priority values take precedence.
type PriceRule struct {
	ID         int64
	Scope      Scope
	SKUCode    string
	CategoryID *uuid.UUID
	Tag        string
	Action     Action
	// Value carries basis points for percent rules and minor units for
	// amount/net. It may be absent for promotion and bundle rules.
	Value     *int64
	MinQty    *int
	MaxQty    *int
	ValidFrom *time.Time
	ValidTo   *time.Time
	Priority  int
	Active    bool
}

// AppliesTo reports whether the rule's scope targets the product.
func (r PriceRule) AppliesTo(p Product) bool {
	switch r.Scope {
	case ScopeSKU:
		return r.SKUCode != "" && r.SKUCode == p.Code
	case ScopeCategory:
		return r.CategoryID != nil && p.CategoryID != nil && *r.CategoryID == *p.CategoryID
	case ScopeTag:
		return r.Tag != "" && p.HasTag(r.Tag)
	case ScopeAll:
		return true
	default:
		return false
	}
}

// Applicable reports whether the rule matches the product, quantity, and
// instant. Candidate sets from the repository are re-validated here
// regardless of any prefiltering the store already performed.
func (r PriceRule) Applicable(p Product, qty int, now time.Time) bool {
	if !r.Active {
		return false
	}
	if !r.AppliesTo(p) {
		return false
	}
	if r.MinQty != nil && qty < *r.MinQty {
		return false
	}
	if r.MaxQty != nil && qty > *r.MaxQty {
		return false
	}
	return windowContains(r.ValidFrom, r.ValidTo, now)
}

// Candidate computes the rule's candidate unit price from the list price.
// It reports false when the rule produces no numeric price, which is the
// case for promotion and bundle rules without a value.
func (r PriceRule) Candidate(list Money) (Money, bool) {
	switch r.Action {
	case ActionPercent:
		if r.Value == nil || *r.Value <= 0 {
			return 0, false
		}
		return clampFloor(list - (list*(*r.Value))/10000), true
	case ActionAmount:
		if r.Value == nil {
			return 0, false
		}
		return clampFloor(list - *r.Value), true
	case ActionNet:
		if r.Value == nil {
			return 0, false
		}
		return clampFloor(*r.Value), true
	case ActionPromotion, ActionBundle:
		if r.Value == nil {
			return 0, false
		}
		return clampFloor(list - *r.Value), true
	default:
		return 0, false
	}
}

// scopeRank orders scopes from most to least specific.
func scopeRank(s Scope) int {
	switch s {
	case ScopeSKU:
		return 0
	case ScopeCategory:
		return 1
	case ScopeTag:
		return 2
	case ScopeAll:
		return 3
	default:
		return 4
	}
}

// MatchRule selects the single best-matching rule for the product at the
// given quantity and instant, or nil when none applies. Ties resolve by
// priority, then scope specificity, then lowest rule id, so the outcome
// never depends on candidate ordering.
func MatchRule(p Product, qty int, now time.Time, candidates []PriceRule) *PriceRule {
	var best *PriceRule
	for i := range candidates {
		r := &candidates[i]
		if !r.Applicable(p, qty, now) {
			continue
		}
		if best == nil || ruleBefore(*r, *best) {
			best = r
		}
	}
	return best
}

func ruleBefore(a, b PriceRule) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if ra, rb := scopeRank(a.Scope), scopeRank(b.Scope); ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}
