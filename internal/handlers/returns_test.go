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
	"github.com/cleanpress/api/internal/services"
)

func newReturnsRouter(svc services.ReturnService) chi.Router {
	return NewRouter(WithReturnRoutes(NewReturnHandlers(svc).Routes))
}

func TestCreateReturnRequiresOrderID(t *testing.T) {
	router := newReturnsRouter(&fakeReturnService{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"items": []map[string]any{{"product_id": "prd_1", "quantity": 1}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "order_id is required" {
		t.Fatalf("error = %v, want %q", payload["error"], "order_id is required")
	}
}

func TestCreateReturnRequiresItems(t *testing.T) {
	router := newReturnsRouter(&fakeReturnService{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"order_id": "ord_1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "items array is required" {
		t.Fatalf("error = %v, want %q", payload["error"], "items array is required")
	}
}

func TestCreateReturnSucceeds(t *testing.T) {
	created := domain.Return{
		ID:           "ret_1",
		OrderID:      "ord_1",
		Reason:       "damaged collar",
		RefundAmount: decimal.RequireFromString("15.5"),
		Items: []domain.ReturnItem{{
			ID:           "rti_1",
			ReturnID:     "ret_1",
			ProductID:    "prd_1",
			ProductName:  "Shirt",
			Service:      domain.ServiceIron,
			Quantity:     1,
			Rate:         decimal.RequireFromString("15.5"),
			RefundAmount: decimal.RequireFromString("15.5"),
		}},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	var gotCmd services.ProcessReturnCommand
	svc := &fakeReturnService{
		processFn: func(_ context.Context, cmd services.ProcessReturnCommand) (domain.Return, error) {
			gotCmd = cmd
			return created, nil
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"order_id": "ord_1",
		"reason":   "damaged collar",
		"items":    []map[string]any{{"product_id": "prd_1", "quantity": 1, "refund_amount": "15.50"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gotCmd.OrderID != "ord_1" || len(gotCmd.Items) != 1 {
		t.Fatalf("unexpected command passed to service: %+v", gotCmd)
	}
	if gotCmd.RefundAmount != nil {
		t.Fatalf("absent aggregate forwarded as %s, want nil", gotCmd.RefundAmount)
	}
	payload := decodeEnvelope(t, rec)
	if payload["id"] != "ret_1" {
		t.Fatalf("id = %v, want ret_1", payload["id"])
	}
	if payload["refund_amount"] != "15.50" {
		t.Fatalf("refund_amount = %v, want 15.50", payload["refund_amount"])
	}
}

func TestCreateReturnForwardsStatedAggregate(t *testing.T) {
	var gotCmd services.ProcessReturnCommand
	svc := &fakeReturnService{
		processFn: func(_ context.Context, cmd services.ProcessReturnCommand) (domain.Return, error) {
			gotCmd = cmd
			return domain.Return{ID: "ret_1", OrderID: "ord_1"}, nil
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"order_id":      "ord_1",
		"refund_amount": "0",
		"items":         []map[string]any{{"product_id": "prd_1", "quantity": 1, "refund_amount": "15.50"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if gotCmd.RefundAmount == nil || !gotCmd.RefundAmount.IsZero() {
		t.Fatalf("stated zero aggregate forwarded as %v, want explicit 0", gotCmd.RefundAmount)
	}
}

func TestCreateReturnMapsQuantityExceeded(t *testing.T) {
	svc := &fakeReturnService{
		processFn: func(context.Context, services.ProcessReturnCommand) (domain.Return, error) {
			return domain.Return{}, services.ErrReturnQuantityExceeded
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"order_id": "ord_1",
		"items":    []map[string]any{{"product_id": "prd_1", "quantity": 99}},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["code"] != "conflict" {
		t.Fatalf("code = %v, want conflict", payload["code"])
	}
}

func TestCreateReturnInconsistentBackend(t *testing.T) {
	svc := &fakeReturnService{
		processFn: func(context.Context, services.ProcessReturnCommand) (domain.Return, error) {
			return domain.Return{}, services.ErrReturnInconsistent
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodPost, "/api/v1/returns/", map[string]any{
		"order_id": "ord_1",
		"items":    []map[string]any{{"product_id": "prd_1", "quantity": 1}},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["error"] != "return could not be completed, manual reconciliation required" {
		t.Fatalf("error = %v", payload["error"])
	}
}

func TestListReturnsIncludesOrderContext(t *testing.T) {
	svc := &fakeReturnService{
		listFn: func(context.Context) ([]domain.ReturnRecord, error) {
			return []domain.ReturnRecord{{
				Return: domain.Return{
					ID:           "ret_1",
					OrderID:      "ord_1",
					RefundAmount: decimal.RequireFromString("15.505"),
				},
				OrderTotal:   decimal.RequireFromString("103.425"),
				CustomerName: "Jane",
			}}, nil
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodGet, "/api/v1/returns/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 record, got %d", len(payload))
	}
	if payload[0]["order_total"] != "103.43" {
		t.Fatalf("order_total = %v, want 103.43", payload[0]["order_total"])
	}
	if payload[0]["refund_amount"] != "15.51" {
		t.Fatalf("refund_amount = %v, want 15.51", payload[0]["refund_amount"])
	}
	if payload[0]["customer_name"] != "Jane" {
		t.Fatalf("customer_name = %v, want Jane", payload[0]["customer_name"])
	}
}

func TestClearReturns(t *testing.T) {
	cleared := false
	svc := &fakeReturnService{
		clearFn: func(context.Context) error {
			cleared = true
			return nil
		},
	}
	router := newReturnsRouter(svc)

	rec := performJSON(t, router, http.MethodDelete, "/api/v1/returns/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !cleared {
		t.Fatal("ClearReturns was not called")
	}
}
