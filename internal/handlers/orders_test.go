package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
	"github.com/cleanpress/api/internal/services"
)

func newOrdersRouter(svc services.OrderService) chi.Router {
	return NewRouter(WithOrderRoutes(NewOrderHandlers(svc).Routes))
}

func pricedOrder() domain.Order {
	return domain.Order{
		ID:           "ord_1",
		CustomerName: "Jane",
		Lines: []domain.OrderLine{{
			ProductID:   "prd_1",
			ProductName: "Shirt",
			Service:     domain.ServiceIron,
			Quantity:    2,
			Rate:        decimal.RequireFromString("15.50"),
			Subtotal:    decimal.RequireFromString("31"),
		}},
		Subtotal:      decimal.RequireFromString("98.5"),
		Discount:      decimal.RequireFromString("7.5"),
		TaxRatePct:    decimal.RequireFromString("5"),
		Tax:           decimal.RequireFromString("4.925"),
		Total:         decimal.RequireFromString("103.425"),
		PaymentMethod: domain.PaymentCash,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateOrderRequiresItems(t *testing.T) {
	router := newOrdersRouter(&fakeOrderService{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"payment_method": "cash",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "items array is required" {
		t.Fatalf("error = %v, want %q", payload["error"], "items array is required")
	}
}

func TestCreateOrderRequiresPaymentMethod(t *testing.T) {
	router := newOrdersRouter(&fakeOrderService{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"items": []map[string]any{{"product_id": "prd_1", "service": "iron", "quantity": 1}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "payment_method is required" {
		t.Fatalf("error = %v, want %q", payload["error"], "payment_method is required")
	}
}

func TestCreateOrderReturnsPricedTotals(t *testing.T) {
	var gotCmd services.CheckoutCommand
	svc := &fakeOrderService{
		checkoutFn: func(_ context.Context, cmd services.CheckoutCommand) (domain.Order, error) {
			gotCmd = cmd
			return pricedOrder(), nil
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"customer_id":    "cus_1",
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": "prd_1", "service": "iron", "quantity": 2},
			{"product_id": "prd_2", "service": "washAndIron", "quantity": 3, "discount_pct": "10"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gotCmd.CustomerID != "cus_1" || len(gotCmd.Lines) != 2 {
		t.Fatalf("unexpected command passed to service: %+v", gotCmd)
	}
	if gotCmd.Lines[1].Service != domain.ServiceWashAndIron {
		t.Fatalf("line service = %q, want washAndIron", gotCmd.Lines[1].Service)
	}

	payload := decodeEnvelope(t, rec)
	if payload["subtotal"] != "98.50" {
		t.Fatalf("subtotal = %v, want 98.50", payload["subtotal"])
	}
	if payload["tax"] != "4.925" {
		t.Fatalf("tax = %v, want 4.925", payload["tax"])
	}
	if payload["total"] != "103.425" {
		t.Fatalf("total = %v, want 103.425", payload["total"])
	}
}

func TestCreateOrderPaymentDeclined(t *testing.T) {
	svc := &fakeOrderService{
		checkoutFn: func(context.Context, services.CheckoutCommand) (domain.Order, error) {
			return domain.Order{}, services.ErrPaymentFailed
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/orders/", map[string]any{
		"payment_method": "card",
		"card_token":     "tok_visa",
		"items":          []map[string]any{{"product_id": "prd_1", "service": "iron", "quantity": 1}},
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["code"] != "payment_failed" {
		t.Fatalf("code = %v, want payment_failed", payload["code"])
	}
}

func TestGetOrderNotFound(t *testing.T) {
	router := newOrdersRouter(&fakeOrderService{})

	rec := performJSON(t, router, http.MethodGet, "/api/v1/orders/ord_ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListOrdersParsesFilter(t *testing.T) {
	var gotFilter repositories.OrderListFilter
	svc := &fakeOrderService{
		listFn: func(_ context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
			gotFilter = filter
			return []domain.Order{pricedOrder()}, nil
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodGet, "/api/v1/orders/?customer_id=cus_1&status=pending,%20completed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotFilter.CustomerID != "cus_1" {
		t.Fatalf("CustomerID = %q, want cus_1", gotFilter.CustomerID)
	}
	if len(gotFilter.Status) != 2 || gotFilter.Status[0] != domain.OrderStatusPending || gotFilter.Status[1] != domain.OrderStatusCompleted {
		t.Fatalf("Status filter = %v", gotFilter.Status)
	}

	var payload []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 order, got %d", len(payload))
	}
}

func TestUpdateStatusRequiresBodyField(t *testing.T) {
	router := newOrdersRouter(&fakeOrderService{})

	rec := performJSON(t, router, http.MethodPatch, "/api/v1/orders/ord_1/status", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "status is required" {
		t.Fatalf("error = %v, want %q", payload["error"], "status is required")
	}
}

func TestUpdateStatusMapsInvalidTransition(t *testing.T) {
	svc := &fakeOrderService{
		updateStatusFn: func(context.Context, string, domain.OrderStatus) (domain.Order, error) {
			return domain.Order{}, services.ErrInvalidTransition
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodPatch, "/api/v1/orders/ord_1/status", map[string]any{"status": "pending"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestUpdateDeliveryStatusRejectsPrepaidOrders(t *testing.T) {
	svc := &fakeOrderService{
		updateDeliveryFn: func(context.Context, string, domain.DeliveryStatus) (domain.Order, error) {
			return domain.Order{}, services.ErrNotCashOnDelivery
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodPatch, "/api/v1/orders/ord_1/delivery-status", map[string]any{"delivery_status": "delivered"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestClearOrders(t *testing.T) {
	cleared := false
	svc := &fakeOrderService{
		clearFn: func(context.Context) error {
			cleared = true
			return nil
		},
	}
	router := newOrdersRouter(svc)

	rec := performJSON(t, router, http.MethodDelete, "/api/v1/orders/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !cleared {
		t.Fatal("ClearOrders was not called")
	}
}
