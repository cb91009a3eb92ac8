package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Handler wires cart pricing to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type priceCartRequest struct {
	Items []struct {
		SKU string `json:"sku" validate:"required"`
		Qty int    `json:"qty" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
	CustomerID string `json:"customerId" validate:"omitempty,uuid"`
	TaxBps     *int   `json:"taxBps" validate:"omitempty,gte=0,lte=10000"`
}

// Price handles POST /api/v1/pricing/cart.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload priceCartRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
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
	lines := make([]Line, 0, len(payload.Items))
	for _, item := range payload.Items {
		lines = append(lines, Line{SKU: strings.TrimSpace(item.SKU), Qty: item.Qty})
	}

	result, err := h.Svc.PriceCart(r.Context(), lines, customerID, payload.TaxBps)
	if err != nil {
		observeCartPricing("error")
		h.writeError(w, err)
		return
	}
	observeCartPricing("ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func observeCartPricing(result string) {
	if obs.CartPricingsTotal != nil {
		obs.CartPricingsTotal.WithLabelValues(result).Inc()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
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
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, pricing.ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
