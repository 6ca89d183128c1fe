package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
	"github.com/cleanpress/api/internal/services"
)

type fakeOrderService struct {
	checkoutFn       func(context.Context, services.CheckoutCommand) (domain.Order, error)
	getFn            func(context.Context, string) (domain.Order, error)
	listFn           func(context.Context, repositories.OrderListFilter) ([]domain.Order, error)
	updateStatusFn   func(context.Context, string, domain.OrderStatus) (domain.Order, error)
	updatePaymentFn  func(context.Context, string, domain.PaymentStatus) (domain.Order, error)
	updateDeliveryFn func(context.Context, string, domain.DeliveryStatus) (domain.Order, error)
	clearFn          func(context.Context) error
}

func (f *fakeOrderService) Checkout(ctx context.Context, cmd services.CheckoutCommand) (domain.Order, error) {
	if f.checkoutFn != nil {
		return f.checkoutFn(ctx, cmd)
	}
	return domain.Order{}, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if f.getFn != nil {
		return f.getFn(ctx, orderID)
	}
	return domain.Order{}, services.ErrOrderNotFound
}

func (f *fakeOrderService) ListOrders(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, orderID, status)
	}
	return domain.Order{}, nil
}

func (f *fakeOrderService) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) (domain.Order, error) {
	if f.updatePaymentFn != nil {
		return f.updatePaymentFn(ctx, orderID, status)
	}
	return domain.Order{}, nil
}

func (f *fakeOrderService) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) (domain.Order, error) {
	if f.updateDeliveryFn != nil {
		return f.updateDeliveryFn(ctx, orderID, status)
	}
	return domain.Order{}, nil
}

func (f *fakeOrderService) ClearOrders(ctx context.Context) error {
	if f.clearFn != nil {
		return f.clearFn(ctx)
	}
	return nil
}

type fakeReturnService struct {
	processFn func(context.Context, services.ProcessReturnCommand) (domain.Return, error)
	listFn    func(context.Context) ([]domain.ReturnRecord, error)
	clearFn   func(context.Context) error
}

func (f *fakeReturnService) ProcessReturn(ctx context.Context, cmd services.ProcessReturnCommand) (domain.Return, error) {
	if f.processFn != nil {
		return f.processFn(ctx, cmd)
	}
	return domain.Return{}, nil
}

func (f *fakeReturnService) ListReturns(ctx context.Context) ([]domain.ReturnRecord, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeReturnService) ClearReturns(ctx context.Context) error {
	if f.clearFn != nil {
		return f.clearFn(ctx)
	}
	return nil
}

var (
	_ services.OrderService  = (*fakeOrderService)(nil)
	_ services.ReturnService = (*fakeReturnService)(nil)
)

func performJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}
