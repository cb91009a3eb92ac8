package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-kasir/internal/app"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrInvalidInput is returned when the provided line set is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Line pairs a product reference with a requested quantity.
type Line struct {
	SKU string
	Qty int
}

// LinePricing holds one line's resolution plus line-level amounts.
type LinePricing struct {
	pricing.ResolveResponse
	LineSubtotal pricing.Money `json:"lineSubtotal"`
	LineSavings  pricing.Money `json:"lineSavings"`
}

// SavingsBreakdown splits cart savings by the mechanism that won each line.
// Contract savings are reported separately because a contract is neither a
// rule nor a tier in the provenance taxonomy.
type SavingsBreakdown struct {
	PriceRulesSavings pricing.Money `json:"priceRulesSavings"`
	VolumeTierSavings pricing.Money `json:"volumeTierSavings"`
	ContractSavings   pricing.Money `json:"contractSavings"`
}

// Pricing aggregates per-line results into cart totals.
type Pricing struct {
	Currency      string           `json:"currency"`
	Subtotal      pricing.Money    `json:"subtotal"`
	TotalDiscount pricing.Money    `json:"totalDiscount"`
	TaxBps        int              `json:"taxBps"`
	TaxAmount     pricing.Money    `json:"taxAmount"`
	FinalTotal    pricing.Money    `json:"finalTotal"`
	Breakdown     SavingsBreakdown `json:"savingsBreakdown"`
	Lines         []LinePricing    `json:"lines"`
}

// Service prices multi-line carts by resolving every line independently and
// rolling up totals. It holds no cart state; each call reads fresh rule,
// tier, and contract data so provenance stays consistent after quantity
// changes.
type Service struct {
	Resolver    *pricing.Resolver
	TaxBps      int
	Currency    string
	MaxLines    int
	Concurrency int
}

func (s *Service) maxLines() int {
	if s == nil || s.MaxLines <= 0 {
		return 100
	}
	return s.MaxLines
}

func (s *Service) concurrency() int {
	if s == nil || s.Concurrency <= 0 {
		return 8
	}
	return s.Concurrency
}

// PriceCart resolves every line and returns the aggregated breakdown. Line
// resolutions have no data dependency on one another and run concurrently;
// the summation waits for all of them, so a caller timeout fails the whole
// call rather than returning a partial result. Identical inputs against
// identical store state produce identical output.
func (s *Service) PriceCart(ctx context.Context, lines []Line, customerID *uuid.UUID, taxBps *int) (Pricing, error) {
	if s == nil || s.Resolver == nil {
		return Pricing{}, errors.New("cart service not configured")
	}
	if len(lines) == 0 {
		return Pricing{}, fmt.Errorf("cart empty: %w", ErrInvalidInput)
	}
	if len(lines) > s.maxLines() {
		return Pricing{}, fmt.Errorf("cart exceeds %d lines: %w", s.maxLines(), ErrInvalidInput)
	}
	for _, line := range lines {
		if line.Qty <= 0 {
			return Pricing{}, fmt.Errorf("qty must be positive for %q: %w", line.SKU, pricing.ErrInvalidQuantity)
		}
	}

	ctx, span := app.Tracer("cart").Start(ctx, "cart.PriceCart")
	span.SetAttributes(attribute.Int("cart.lines", len(lines)))
	defer span.End()

	results := make([]pricing.Result, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, line := range lines {
		g.Go(func() error {
			res, err := s.Resolver.Resolve(gctx, line.SKU, customerID, line.Qty)
			if err != nil {
				return fmt.Errorf("price line %q: %w", line.SKU, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Pricing{}, err
	}

	rate := s.TaxBps
	if taxBps != nil && *taxBps >= 0 {
		rate = *taxBps
	}

	out := Pricing{
		Currency: s.Currency,
		TaxBps:   rate,
		Lines:    make([]LinePricing, 0, len(lines)),
	}
	for _, res := range results {
		lineSubtotal := res.FinalPrice * pricing.Money(res.Qty)
		lineSavings := res.UnitSavings * pricing.Money(res.Qty)
		out.Subtotal += lineSubtotal
		out.TotalDiscount += lineSavings
		switch res.Source {
		case pricing.SourcePriceRule:
			out.Breakdown.PriceRulesSavings += lineSavings
		case pricing.SourceVolumeTier:
			out.Breakdown.VolumeTierSavings += lineSavings
		case pricing.SourceContract:
			out.Breakdown.ContractSavings += lineSavings
		}
		out.Lines = append(out.Lines, LinePricing{
			ResolveResponse: pricing.NewResolveResponse(res),
			LineSubtotal:    lineSubtotal,
			LineSavings:     lineSavings,
		})
	}
	// Tax applies to the discounted subtotal, never to list price.
	out.TaxAmount = (out.Subtotal * pricing.Money(rate)) / 10000
	out.FinalTotal = out.Subtotal + out.TaxAmount
	return out, nil
}
