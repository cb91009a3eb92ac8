package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

// Handler exposes the price simulation endpoint consumed by the cart UI on
// every quantity change.
type Handler struct {
	Resolver *Resolver
	Validate *validator.Validate
}

type resolveRequest struct {
	SKU        string `json:"sku" validate:"required"`
	Qty        int    `json:"qty" validate:"required,gt=0"`
	CustomerID string `json:"customerId" validate:"omitempty,uuid"`
}

// ResolveResponse is the wire shape of a single resolution.
type ResolveResponse struct {
	SKU           string       `json:"sku"`
	Qty           int          `json:"qty"`
	ListPrice     Money        `json:"listPrice"`
	FinalPrice    Money        `json:"finalPrice"`
	TotalSavings  Money        `json:"totalSavings"`
	PricingSource Source       `json:"pricingSource"`
	AppliedRule   *AppliedRule `json:"appliedRule"`
	TotalAmount   Money        `json:"totalAmount"`
	StockStatus   StockStatus  `json:"stockStatus"`
}

// NewResolveResponse maps a resolution result onto the wire shape.
func NewResolveResponse(res Result) ResolveResponse {
	return ResolveResponse{
		SKU:           res.Product.Code,
		Qty:           res.Qty,
		ListPrice:     res.ListPrice,
		FinalPrice:    res.FinalPrice,
		TotalSavings:  res.UnitSavings,
		PricingSource: res.Source,
		AppliedRule:   res.Applied,
		TotalAmount:   res.FinalPrice * Money(res.Qty),
		StockStatus:   res.Stock,
	}
}

// Resolve handles POST /api/v1/pricing/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h.Resolver == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing resolver not configured", nil)
		return
	}
	var payload resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.SKU = strings.TrimSpace(payload.SKU)
	payload.CustomerID = strings.TrimSpace(payload.CustomerID)
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	var customerID *uuid.UUID
	if payload.CustomerID != "" {
		parsed, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customerId", nil)
			return
		}
		customerID = &parsed
	}

	start := time.Now()
	res, err := h.Resolver.Resolve(r.Context(), payload.SKU, customerID, payload.Qty)
	if obs.ResolutionLatency != nil {
		obs.ResolutionLatency.Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		observeResolution("", "error")
		writeResolveError(w, err)
		return
	}
	observeResolution(string(res.Source), "ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": NewResolveResponse(res)})
}

func observeResolution(source, result string) {
	if obs.PriceResolutionsTotal != nil {
		obs.PriceResolutionsTotal.WithLabelValues(source, result).Inc()
	}
}

func writeResolveError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
