package pricing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func newTestHandler(products map[string]Product) *Handler {
	return &Handler{
		Resolver: newTestResolver(products),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func postResolve(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Resolve(rr, req)
	return rr
}

func TestResolveHandlerSuccess(t *testing.T) {
	product := testProduct()
	h := newTestHandler(map[string]Product{product.Code: product})
	h.Resolver.Rules = fakeRules{rules: []PriceRule{
		{ID: 42, Scope: ScopeAll, Action: ActionPercent, Value: ptr[int64](1000), Active: true},
	}}

	rr := postResolve(t, h, `{"sku":"SKU-RICE-5KG","qty":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}

	var envelope struct {
		Data ResolveResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp := envelope.Data
	if resp.SKU != product.Code || resp.Qty != 3 {
		t.Fatalf("unexpected echo: %+v", resp)
	}
	if resp.FinalPrice != 90_000 || resp.PricingSource != SourcePriceRule {
		t.Fatalf("final = %d source = %s", resp.FinalPrice, resp.PricingSource)
	}
	if resp.TotalAmount != 270_000 {
		t.Fatalf("total = %d, want 270000", resp.TotalAmount)
	}
	if resp.AppliedRule == nil || resp.AppliedRule.ID != 42 {
		t.Fatalf("applied = %+v", resp.AppliedRule)
	}
}

func TestResolveHandlerValidation(t *testing.T) {
	product := testProduct()
	h := newTestHandler(map[string]Product{product.Code: product})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing sku", `{"qty":1}`, http.StatusBadRequest},
		{"zero qty", `{"sku":"SKU-RICE-5KG","qty":0}`, http.StatusBadRequest},
		{"negative qty", `{"sku":"SKU-RICE-5KG","qty":-2}`, http.StatusBadRequest},
		{"bad customer id", `{"sku":"SKU-RICE-5KG","qty":1,"customerId":"nope"}`, http.StatusBadRequest},
		{"unknown product", `{"sku":"SKU-GHOST","qty":1}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := postResolve(t, h, tc.body)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
			var envelope struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if envelope.Error.Code == "" {
				t.Fatalf("expected error code in body %s", rr.Body.String())
			}
		})
	}
}

func TestResolveHandlerContractCustomer(t *testing.T) {
	product := testProduct()
	customer := "aaaaaaaa-0000-0000-0000-000000000001"
	h := newTestHandler(map[string]Product{product.Code: product})
	h.Resolver.Contracts = fakeContracts{contracts: []ContractPrice{
		{
			ID:         5,
			CustomerID: uuid.MustParse(customer),
			ProductID:  product.ID,
			NetPrice:   70_000,
			Active:     true,
			CreatedAt:  testNow.Add(-24 * time.Hour),
		},
	}}

	rr := postResolve(t, h, `{"sku":"SKU-RICE-5KG","qty":2,"customerId":"`+customer+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var envelope struct {
		Data ResolveResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PricingSource != SourceContract || envelope.Data.FinalPrice != 70_000 {
		t.Fatalf("got %s %d, want contract 70000", envelope.Data.PricingSource, envelope.Data.FinalPrice)
	}
	if envelope.Data.AppliedRule != nil {
		t.Fatalf("contract responses carry a null appliedRule, got %+v", envelope.Data.AppliedRule)
	}
}
