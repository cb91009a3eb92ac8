package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidQuantity is returned when the requested quantity is not a
	// positive integer.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrProductNotFound is returned when the catalog cannot resolve the
	// product reference.
	ErrProductNotFound = errors.New("product not found")
)

// Catalog resolves product references for pricing.
type Catalog interface {
	Product(ctx context.Context, code string) (Product, error)
}

// ContractStore looks up the active contract price for a customer/product
// pair, or nil when none exists. Implementations recover an ambiguous key
// by returning the most recently created active record.
type ContractStore interface {
	ActiveContract(ctx context.Context, customerID, productID uuid.UUID, at time.Time) (*ContractPrice, error)
}

// RuleStore returns candidate price rules for a product. Stores may
// prefilter by activity and scope; the engine re-validates regardless.
type RuleStore interface {
	CandidateRules(ctx context.Context, p Product) ([]PriceRule, error)
}

// TierStore returns candidate volume tiers for a product, with the same
// re-validation contract as RuleStore.
type TierStore interface {
	CandidateTiers(ctx context.Context, p Product) ([]VolumeTier, error)
}

// Resolver orchestrates contract lookup, rule matching, and tier matching
// into one final unit price with provenance. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	Catalog   Catalog
	Contracts ContractStore
	Rules     RuleStore
	Tiers     TierStore
	Now       func() time.Time
}

func (r *Resolver) now() time.Time {
	if r != nil && r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Resolve computes the unit price a customer pays for qty units of the
// product identified by code. A nil customerID prices an anonymous buyer.
// Absent rules or tiers simply yield the list price; lookup failures from
// the underlying stores propagate as-is.
func (r *Resolver) Resolve(ctx context.Context, code string, customerID *uuid.UUID, qty int) (Result, error) {
	if r == nil || r.Catalog == nil {
		return Result{}, errors.New("pricing resolver not configured")
	}
	if qty <= 0 {
		return Result{}, fmt.Errorf("qty %d: %w", qty, ErrInvalidQuantity)
	}

	product, err := r.Catalog.Product(ctx, code)
	if err != nil {
		return Result{}, err
	}
	now := r.now()

	if customerID != nil && r.Contracts != nil {
		contract, err := r.Contracts.ActiveContract(ctx, *customerID, product.ID, now)
		if err != nil {
			return Result{}, fmt.Errorf("contract lookup: %w", err)
		}
		if contract != nil && contract.ValidAt(now) {
			// A negotiated contract is an explicit agreement and is never
			// combined with rules or tiers.
			return Result{
				Product:     product,
				Qty:         qty,
				ListPrice:   product.ListPrice,
				FinalPrice:  contract.NetPrice,
				UnitSavings: clampFloor(product.ListPrice - contract.NetPrice),
				Source:      SourceContract,
				Stock:       stockStatus(product, qty),
			}, nil
		}
	}

	var (
		rules []PriceRule
		tiers []VolumeTier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if r.Rules == nil {
			return nil
		}
		var err error
		rules, err = r.Rules.CandidateRules(gctx, product)
		if err != nil {
			return fmt.Errorf("list rules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if r.Tiers == nil {
			return nil
		}
		var err error
		tiers, err = r.Tiers.CandidateTiers(gctx, product)
		if err != nil {
			return fmt.Errorf("list tiers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	rule := MatchRule(product, qty, now, rules)
	tier := MatchTier(product, qty, now, tiers)

	result := Result{
		Product:    product,
		Qty:        qty,
		ListPrice:  product.ListPrice,
		FinalPrice: product.ListPrice,
		Source:     SourceListPrice,
		Stock:      stockStatus(product, qty),
	}

	// Best-of policy: lowest unit price wins; exactly one mechanism is
	// credited. Rules win exact ties against tiers.
	if tier != nil {
		if candidate, ok := tier.Candidate(product.ListPrice); ok && candidate < result.FinalPrice {
			result.FinalPrice = candidate
			result.Source = SourceVolumeTier
			result.Applied = &AppliedRule{ID: tier.ID, Kind: SourceVolumeTier, Reason: tierReason(*tier)}
		}
	}
	if rule != nil {
		if candidate, ok := rule.Candidate(product.ListPrice); ok && candidate <= result.FinalPrice && candidate < product.ListPrice {
			result.FinalPrice = candidate
			result.Source = SourcePriceRule
			result.Applied = &AppliedRule{ID: rule.ID, Kind: SourcePriceRule, Reason: ruleReason(*rule)}
		}
	}
	result.UnitSavings = result.ListPrice - result.FinalPrice
	return result, nil
}

func stockStatus(p Product, qty int) StockStatus {
	if p.Stock >= qty {
		return StockStatus{Sufficient: true}
	}
	shortfall := qty - p.Stock
	return StockStatus{
		Sufficient: false,
		Shortfall:  shortfall,
		Warning:    fmt.Sprintf("insufficient stock: short %d units", shortfall),
	}
}

func ruleReason(r PriceRule) string {
	switch r.Action {
	case ActionPercent:
		return fmt.Sprintf("%s%% off (price rule #%d)", formatBps(*r.Value), r.ID)
	case ActionAmount, ActionPromotion, ActionBundle:
		return fmt.Sprintf("%d off (price rule #%d)", *r.Value, r.ID)
	case ActionNet:
		return fmt.Sprintf("net price override (price rule #%d)", r.ID)
	default:
		return fmt.Sprintf("price rule #%d", r.ID)
	}
}

func tierReason(t VolumeTier) string {
	if t.DiscountBps != nil && *t.DiscountBps > 0 {
		return fmt.Sprintf("%s%% volume discount from %d units (tier #%d)", formatBps(int64(*t.DiscountBps)), t.MinQty, t.ID)
	}
	if t.DiscountAmount != nil {
		return fmt.Sprintf("%d off per unit from %d units (tier #%d)", *t.DiscountAmount, t.MinQty, t.ID)
	}
	return fmt.Sprintf("volume discount from %d units (tier #%d)", t.MinQty, t.ID)
}

// formatBps renders basis points as a percentage, dropping the fraction
// when it is an integer percent.
func formatBps(bps int64) string {
	if bps%100 == 0 {
		return fmt.Sprintf("%d", bps/100)
	}
	return fmt.Sprintf("%d.%02d", bps/100, bps%100)
}
