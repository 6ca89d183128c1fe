package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cleanpress/api/internal/platform/httpx"
	"github.com/cleanpress/api/internal/services"
)

// writeServiceError maps service sentinel errors onto the JSON error envelope.
// Unrecognised errors become an opaque 500 so internals never leak to the till.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrReturnAmountMismatch):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", trimSentinel(err), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", trimSentinel(err), http.StatusNotFound))
	case errors.Is(err, services.ErrBarcodeConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrReturnAlreadyProcessed),
		errors.Is(err, services.ErrReturnQuantityExceeded),
		errors.Is(err, services.ErrReturnItemMismatch),
		errors.Is(err, services.ErrNotCashOnDelivery):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", trimSentinel(err), http.StatusConflict))
	case errors.Is(err, services.ErrPaymentFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_failed", "payment could not be processed", http.StatusPaymentRequired))
	case errors.Is(err, services.ErrReturnInconsistent):
		httpx.WriteError(ctx, w, httpx.NewError("return_inconsistent", "return could not be completed, manual reconciliation required", http.StatusInternalServerError))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
	}
}

// trimSentinel drops the "services: " package prefix from sentinel messages
// so the till shows "cart is empty" rather than internals.
func trimSentinel(err error) string {
	return strings.Replace(err.Error(), "services: ", "", 1)
}
