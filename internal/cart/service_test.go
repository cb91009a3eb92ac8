package cart

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

type fakeCatalog map[string]pricing.Product

func (f fakeCatalog) Product(_ context.Context, code string) (pricing.Product, error) {
	p, ok := f[code]
	if !ok {
		return pricing.Product{}, pricing.ErrProductNotFound
	}
	return p, nil
}

type fakeContracts []pricing.ContractPrice

func (f fakeContracts) ActiveContract(_ context.Context, customerID, productID uuid.UUID, at time.Time) (*pricing.ContractPrice, error) {
	for i := range f {
		c := f[i]
		if c.CustomerID == customerID && c.ProductID == productID && c.ValidAt(at) {
			return &c, nil
		}
	}
	return nil, nil
}

type fakeRules []pricing.PriceRule

func (f fakeRules) CandidateRules(context.Context, pricing.Product) ([]pricing.PriceRule, error) {
	return f, nil
}

type fakeTiers []pricing.VolumeTier

func (f fakeTiers) CandidateTiers(context.Context, pricing.Product) ([]pricing.VolumeTier, error) {
	return f, nil
}

func i64p(v int64) *int64 { return &v }
func i32p(v int32) *int32 { return &v }

var (
	riceID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	headsetID  = uuid.MustParse("11111111-1111-1111-1111-111111111112")
	customerID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
)

func testService() *Service {
	catalog := fakeCatalog{
		"SKU-RICE-5KG": {ID: riceID, Code: "SKU-RICE-5KG", ListPrice: 50_000, Stock: 500},
		"SKU-HEADSET":  {ID: headsetID, Code: "SKU-HEADSET", Tags: []string{"clearance"}, ListPrice: 100_000, Stock: 50},
	}
	rules := fakeRules{
		{ID: 1, Scope: pricing.ScopeTag, Tag: "clearance", Action: pricing.ActionPercent, Value: i64p(1000), Active: true},
	}
	tiers := fakeTiers{
		{ID: 2, Scope: pricing.ScopeSKU, SKUCode: "SKU-RICE-5KG", MinQty: 10, DiscountBps: i32p(2000), Active: true},
	}
	contracts := fakeContracts{
		{ID: 3, CustomerID: customerID, ProductID: headsetID, NetPrice: 80_000, Active: true},
	}
	return &Service{
		Resolver: &pricing.Resolver{
			Catalog:   catalog,
			Contracts: contracts,
			Rules:     rules,
			Tiers:     tiers,
			Now:       func() time.Time { return testNow },
		},
		TaxBps:   1000,
		Currency: "IDR",
	}
}

func TestPriceCartAggregation(t *testing.T) {
	svc := testService()
	lines := []Line{
		{SKU: "SKU-HEADSET", Qty: 2},
		{SKU: "SKU-RICE-5KG", Qty: 10},
	}

	got, err := svc.PriceCart(context.Background(), lines, nil, nil)
	require.NoError(t, err)

	require.Equal(t, "IDR", got.Currency)
	require.Len(t, got.Lines, 2)

	// Headset: 10% clearance rule, 90000 x 2.
	require.Equal(t, pricing.SourcePriceRule, got.Lines[0].PricingSource)
	require.Equal(t, int64(180_000), got.Lines[0].LineSubtotal)
	require.Equal(t, int64(20_000), got.Lines[0].LineSavings)

	// Rice: 20% tier at 10 units, 40000 x 10.
	require.Equal(t, pricing.SourceVolumeTier, got.Lines[1].PricingSource)
	require.Equal(t, int64(400_000), got.Lines[1].LineSubtotal)
	require.Equal(t, int64(100_000), got.Lines[1].LineSavings)

	require.Equal(t, int64(580_000), got.Subtotal)
	require.Equal(t, int64(120_000), got.TotalDiscount)
	require.Equal(t, int64(20_000), got.Breakdown.PriceRulesSavings)
	require.Equal(t, int64(100_000), got.Breakdown.VolumeTierSavings)
	require.Equal(t, int64(0), got.Breakdown.ContractSavings)

	// 10% tax on the discounted subtotal.
	require.Equal(t, 1000, got.TaxBps)
	require.Equal(t, int64(58_000), got.TaxAmount)
	require.Equal(t, int64(638_000), got.FinalTotal)
}

func TestPriceCartContractBucket(t *testing.T) {
	svc := testService()
	lines := []Line{{SKU: "SKU-HEADSET", Qty: 3}}

	got, err := svc.PriceCart(context.Background(), lines, &customerID, nil)
	require.NoError(t, err)

	// The contract (80000) beats the clearance rule (90000) for this customer.
	require.Equal(t, pricing.SourceContract, got.Lines[0].PricingSource)
	require.Equal(t, int64(240_000), got.Subtotal)
	require.Equal(t, int64(60_000), got.Breakdown.ContractSavings)
	require.Equal(t, int64(0), got.Breakdown.PriceRulesSavings)
}

func TestPriceCartTaxOverride(t *testing.T) {
	svc := testService()
	lines := []Line{{SKU: "SKU-RICE-5KG", Qty: 1}}

	zero := 0
	got, err := svc.PriceCart(context.Background(), lines, nil, &zero)
	require.NoError(t, err)
	require.Equal(t, 0, got.TaxBps)
	require.Equal(t, int64(0), got.TaxAmount)
	require.Equal(t, got.Subtotal, got.FinalTotal)
}

func TestPriceCartLineOrderStable(t *testing.T) {
	svc := testService()
	forward := []Line{
		{SKU: "SKU-HEADSET", Qty: 2},
		{SKU: "SKU-RICE-5KG", Qty: 10},
	}
	backward := []Line{
		{SKU: "SKU-RICE-5KG", Qty: 10},
		{SKU: "SKU-HEADSET", Qty: 2},
	}

	a, err := svc.PriceCart(context.Background(), forward, nil, nil)
	require.NoError(t, err)
	b, err := svc.PriceCart(context.Background(), backward, nil, nil)
	require.NoError(t, err)

	// Totals are permutation invariant and lines echo input order.
	require.Equal(t, a.Subtotal, b.Subtotal)
	require.Equal(t, a.TaxAmount, b.TaxAmount)
	require.Equal(t, a.FinalTotal, b.FinalTotal)
	require.Equal(t, a.Breakdown, b.Breakdown)
	require.Equal(t, a.Lines[0].SKU, b.Lines[1].SKU)
}

func TestPriceCartDeterministic(t *testing.T) {
	svc := testService()
	lines := []Line{
		{SKU: "SKU-HEADSET", Qty: 2},
		{SKU: "SKU-RICE-5KG", Qty: 10},
	}

	first, err := svc.PriceCart(context.Background(), lines, nil, nil)
	require.NoError(t, err)
	second, err := svc.PriceCart(context.Background(), lines, nil, nil)
	require.NoError(t, err)
	require.True(t, reflect.DeepEqual(first, second), "identical input must produce identical output")
}

func TestPriceCartInvalidInput(t *testing.T) {
	svc := testService()

	_, err := svc.PriceCart(context.Background(), nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.PriceCart(context.Background(), []Line{{SKU: "SKU-RICE-5KG", Qty: 0}}, nil, nil)
	require.ErrorIs(t, err, pricing.ErrInvalidQuantity)

	svc.MaxLines = 1
	_, err = svc.PriceCart(context.Background(), []Line{
		{SKU: "SKU-RICE-5KG", Qty: 1},
		{SKU: "SKU-HEADSET", Qty: 1},
	}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPriceCartUnknownProduct(t *testing.T) {
	svc := testService()
	_, err := svc.PriceCart(context.Background(), []Line{{SKU: "SKU-GHOST", Qty: 1}}, nil, nil)
	require.ErrorIs(t, err, pricing.ErrProductNotFound)
}
