package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func testProduct() Product {
	category := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	return Product{
		ID:         uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Code:       "SKU-RICE-5KG",
		CategoryID: &category,
		Tags:       []string{"staple"},
		ListPrice:  100_000,
		Stock:      500,
	}
}

func TestRuleAppliesTo(t *testing.T) {
	product := testProduct()
	otherCategory := uuid.MustParse("44444444-4444-4444-4444-444444444444")

	cases := []struct {
		name string
		rule PriceRule
		want bool
	}{
		{"sku match", PriceRule{Scope: ScopeSKU, SKUCode: "SKU-RICE-5KG"}, true},
		{"sku mismatch", PriceRule{Scope: ScopeSKU, SKUCode: "SKU-OIL-2L"}, false},
		{"sku empty", PriceRule{Scope: ScopeSKU}, false},
		{"category match", PriceRule{Scope: ScopeCategory, CategoryID: product.CategoryID}, true},
		{"category mismatch", PriceRule{Scope: ScopeCategory, CategoryID: &otherCategory}, false},
		{"category nil", PriceRule{Scope: ScopeCategory}, false},
		{"tag match", PriceRule{Scope: ScopeTag, Tag: "staple"}, true},
		{"tag mismatch", PriceRule{Scope: ScopeTag, Tag: "clearance"}, false},
		{"all", PriceRule{Scope: ScopeAll}, true},
		{"unknown scope", PriceRule{Scope: Scope("brand")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.AppliesTo(product); got != tc.want {
				t.Fatalf("AppliesTo = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRuleApplicableQuantityBand(t *testing.T) {
	product := testProduct()
	rule := PriceRule{
		Scope:  ScopeAll,
		Action: ActionPercent,
		Value:  ptr[int64](1000),
		MinQty: ptr(5),
		MaxQty: ptr(9),
		Active: true,
	}

	for qty, want := range map[int]bool{4: false, 5: true, 9: true, 10: false} {
		if got := rule.Applicable(product, qty, testNow); got != want {
			t.Fatalf("qty %d: Applicable = %v, want %v", qty, got, want)
		}
	}
}

func TestRuleApplicableWindow(t *testing.T) {
	product := testProduct()
	past := testNow.Add(-48 * time.Hour)
	future := testNow.Add(48 * time.Hour)

	cases := []struct {
		name string
		rule PriceRule
		want bool
	}{
		{"inactive", PriceRule{Scope: ScopeAll, Active: false}, false},
		{"no window", PriceRule{Scope: ScopeAll, Active: true}, true},
		{"inside window", PriceRule{Scope: ScopeAll, Active: true, ValidFrom: &past, ValidTo: &future}, true},
		{"expired despite active", PriceRule{Scope: ScopeAll, Active: true, ValidTo: &past}, false},
		{"not yet started", PriceRule{Scope: ScopeAll, Active: true, ValidFrom: &future}, false},
		{"open-ended from", PriceRule{Scope: ScopeAll, Active: true, ValidFrom: &past}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule.Applicable(product, 1, testNow); got != tc.want {
				t.Fatalf("Applicable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRuleCandidate(t *testing.T) {
	cases := []struct {
		name   string
		rule   PriceRule
		list   Money
		want   Money
		wantOK bool
	}{
		{"percent 10", PriceRule{Action: ActionPercent, Value: ptr[int64](1000)}, 100_000, 90_000, true},
		{"percent rounds down", PriceRule{Action: ActionPercent, Value: ptr[int64](333)}, 999, 966, true},
		{"percent nil value", PriceRule{Action: ActionPercent}, 100_000, 0, false},
		{"percent zero value", PriceRule{Action: ActionPercent, Value: ptr[int64](0)}, 100_000, 0, false},
		{"amount", PriceRule{Action: ActionAmount, Value: ptr[int64](15_000)}, 100_000, 85_000, true},
		{"amount exceeds list", PriceRule{Action: ActionAmount, Value: ptr[int64](150_000)}, 100_000, 0, true},
		{"net", PriceRule{Action: ActionNet, Value: ptr[int64](70_000)}, 100_000, 70_000, true},
		{"promotion with value", PriceRule{Action: ActionPromotion, Value: ptr[int64](5_000)}, 100_000, 95_000, true},
		{"promotion without value", PriceRule{Action: ActionPromotion}, 100_000, 0, false},
		{"bundle without value", PriceRule{Action: ActionBundle}, 100_000, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.rule.Candidate(tc.list)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Fatalf("candidate = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMatchRulePrecedence(t *testing.T) {
	product := testProduct()

	t.Run("lower priority wins", func(t *testing.T) {
		rules := []PriceRule{
			{ID: 1, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](500), Priority: 100, Active: true},
			{ID: 2, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](300), Priority: 10, Active: true},
		}
		got := MatchRule(product, 1, testNow, rules)
		if got == nil || got.ID != 2 {
			t.Fatalf("expected rule 2, got %+v", got)
		}
	})

	t.Run("scope specificity breaks priority ties", func(t *testing.T) {
		rules := []PriceRule{
			{ID: 1, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](500), Priority: 10, Active: true},
			{ID: 2, Scope: ScopeSKU, SKUCode: product.Code, Action: ActionPercent, Value: ptr[int64](300), Priority: 10, Active: true},
			{ID: 3, Scope: ScopeTag, Tag: "staple", Action: ActionPercent, Value: ptr[int64](400), Priority: 10, Active: true},
		}
		got := MatchRule(product, 1, testNow, rules)
		if got == nil || got.ID != 2 {
			t.Fatalf("expected sku-scoped rule 2, got %+v", got)
		}
	})

	t.Run("lowest id breaks full ties", func(t *testing.T) {
		rules := []PriceRule{
			{ID: 7, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](500), Priority: 10, Active: true},
			{ID: 3, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](300), Priority: 10, Active: true},
		}
		got := MatchRule(product, 1, testNow, rules)
		if got == nil || got.ID != 3 {
			t.Fatalf("expected rule 3, got %+v", got)
		}
	})

	t.Run("order independence", func(t *testing.T) {
		rules := []PriceRule{
			{ID: 1, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](500), Priority: 100, Active: true},
			{ID: 2, Scope: ScopeSKU, SKUCode: product.Code, Action: ActionPercent, Value: ptr[int64](300), Priority: 10, Active: true},
			{ID: 3, Scope: ScopeTag, Tag: "staple", Action: ActionPercent, Value: ptr[int64](400), Priority: 10, Active: true},
		}
		forward := MatchRule(product, 1, testNow, rules)
		reversed := []PriceRule{rules[2], rules[1], rules[0]}
		backward := MatchRule(product, 1, testNow, reversed)
		if forward == nil || backward == nil || forward.ID != backward.ID {
			t.Fatalf("match depends on candidate order: %+v vs %+v", forward, backward)
		}
	})

	t.Run("no applicable rules", func(t *testing.T) {
		rules := []PriceRule{
			{ID: 1, Scope: ScopeSKU, SKUCode: "SKU-OTHER", Action: ActionPercent, Value: ptr[int64](500), Active: true},
			{ID: 2, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](500), Active: false},
		}
		if got := MatchRule(product, 1, testNow, rules); got != nil {
			t.Fatalf("expected no match, got %+v", got)
		}
	})
}
