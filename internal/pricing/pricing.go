package pricing

import (
	"time"

	"github.com/google/uuid"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Source identifies which mechanism produced a final price.
type Source string

// Pricing provenance tags.
const (
	SourceContract   Source = "contract"
	SourcePriceRule  Source = "price_rule"
	SourceVolumeTier Source = "volume_tier"
	SourceListPrice  Source = "list_price"
)

// Scope is the targeting dimension of a rule or tier.
type Scope string

// Supported scopes. Volume tiers only use ScopeSKU and ScopeCategory.
const (
	ScopeSKU      Scope = "sku"
	ScopeCategory Scope = "category"
	ScopeTag      Scope = "tag"
	ScopeAll      Scope = "all"
)

// Action describes how a price rule derives its candidate price.
type Action string

// Supported rule actions. Promotion and bundle carry no numeric effect
// unless a value is present, in which case amount semantics apply.
const (
	ActionPercent   Action = "percent"
	ActionAmount    Action = "amount"
	ActionNet       Action = "net"
	ActionPromotion Action = "promotion"
	ActionBundle    Action = "bundle"
)

// Product carries the catalog fields the engine needs. It is immutable for
// the duration of a single resolution call.
type Product struct {
	ID         uuid.UUID
	Code       string
	CategoryID *uuid.UUID
	Tags       []string
	ListPrice  Money
	Stock      int
}

// HasTag reports whether the product carries the given tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ContractPrice is a negotiated net price for one customer/product pair.
type ContractPrice struct {
	ID         int64
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	NetPrice   Money
	ValidFrom  *time.Time
	ValidTo    *time.Time
	Active     bool
	CreatedAt  time.Time
}

// ValidAt reports whether the contract is active and inside its validity
// window at the provided instant.
func (c ContractPrice) ValidAt(now time.Time) bool {
	return c.Active && windowContains(c.ValidFrom, c.ValidTo, now)
}

// StockStatus is an advisory flag returned alongside a price. It never
// affects the computed price.
type StockStatus struct {
	Sufficient bool   `json:"sufficient"`
	Shortfall  int    `json:"shortfall,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

// AppliedRule records the winning rule or tier and a human-readable reason.
type AppliedRule struct {
	ID     int64  `json:"id"`
	Kind   Source `json:"kind"`
	Reason string `json:"reason"`
}

// Result is the outcome of a single price resolution.
type Result struct {
	Product     Product
	Qty         int
	ListPrice   Money
	FinalPrice  Money
	UnitSavings Money
	Source      Source
	Applied     *AppliedRule
	Stock       StockStatus
}

// windowContains treats an absent bound as a strict absence of constraint,
// never as an epoch or infinite-future sentinel.
func windowContains(from, to *time.Time, now time.Time) bool {
	if from != nil && now.Before(*from) {
		return false
	}
	if to != nil && now.After(*to) {
		return false
	}
	return true
}

func clampFloor(v Money) Money {
	if v < 0 {
		return 0
	}
	return v
}
