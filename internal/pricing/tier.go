package pricing

import (
	"time"

	"github.com/google/uuid"
)

// VolumeTier is a quantity-threshold discount band scoped to a product or
// category. At most one of DiscountBps and DiscountAmount is populated.
type VolumeTier struct {
	ID             int64
	Scope          Scope
	SKUCode        string
	CategoryID     *uuid.UUID
	MinQty         int
	DiscountBps    *int32
	DiscountAmount *Money
	ValidFrom      *time.Time
	ValidTo        *time.Time
	Active         bool
}

// AppliesTo reports whether the tier's scope targets the product. Tiers
// support sku and category scopes only.
func (t VolumeTier) AppliesTo(p Product) bool {
	switch t.Scope {
	case ScopeSKU:
		return t.SKUCode != "" && t.SKUCode == p.Code
	case ScopeCategory:
		return t.CategoryID != nil && p.CategoryID != nil && *t.CategoryID == *p.CategoryID
	default:
		return false
	}
}

// Applicable reports whether the tier matches the product and the quantity
// clears the threshold at the given instant.
func (t VolumeTier) Applicable(p Product, qty int, now time.Time) bool {
	if !t.Active {
		return false
	}
	if !t.AppliesTo(p) {
		return false
	}
	if qty < t.MinQty {
		return false
	}
	return windowContains(t.ValidFrom, t.ValidTo, now)
}

// Candidate computes the tier's candidate unit price from the list price.
// A tier with neither discount field populated produces no candidate.
func (t VolumeTier) Candidate(list Money) (Money, bool) {
	if t.DiscountBps != nil && *t.DiscountBps > 0 {
		return clampFloor(list - (list*int64(*t.DiscountBps))/10000), true
	}
	if t.DiscountAmount != nil {
		return clampFloor(list - *t.DiscountAmount), true
	}
	return 0, false
}

// MatchTier selects the qualifying tier with the highest satisfied
// threshold, or nil when none applies. Tiers are cumulative bands, so the
// largest threshold the quantity still clears carries the deepest discount.
// Ties on threshold resolve by discount depth, then lowest tier id.
func MatchTier(p Product, qty int, now time.Time, candidates []VolumeTier) *VolumeTier {
	var best *VolumeTier
	for i := range candidates {
		t := &candidates[i]
		if !t.Applicable(p, qty, now) {
			continue
		}
		if best == nil || tierBefore(*t, *best, p.ListPrice) {
			best = t
		}
	}
	return best
}

func tierBefore(a, b VolumeTier, list Money) bool {
	if a.MinQty != b.MinQty {
		return a.MinQty > b.MinQty
	}
	pa, aok := a.Candidate(list)
	pb, bok := b.Candidate(list)
	if aok != bok {
		return aok
	}
	if aok && pa != pb {
		return pa < pb
	}
	return a.ID < b.ID
}
