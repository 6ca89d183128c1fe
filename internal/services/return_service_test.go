package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

func decPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d := dec(t, value)
	return &d
}

type recordingUnitOfWork struct {
	calls int
}

func (u *recordingUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	u.calls++
	return fn(ctx)
}

func (u *recordingUnitOfWork) Atomic() bool { return true }

// passthroughUnitOfWork mimics a backend that groups nothing, like a gateway
// without transactions.
type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughUnitOfWork) Atomic() bool { return false }

func soldOrder(t *testing.T) domain.Order {
	t.Helper()
	return domain.Order{
		ID:     "ord_1",
		Status: domain.OrderStatusCompleted,
		Lines: []domain.OrderLine{
			{
				ProductID:   "prd_shirt",
				ProductName: "Shirt",
				Service:     domain.ServiceIron,
				Quantity:    2,
				Rate:        dec(t, "15.50"),
			},
			{
				ProductID:   "prd_suit",
				ProductName: "Suit",
				Service:     domain.ServiceWashAndIron,
				Quantity:    3,
				Rate:        dec(t, "25.00"),
			},
		},
		Total: dec(t, "103.425"),
	}
}

func newTestReturnService(t *testing.T, orders *stubOrderRepo, returns *stubReturnRepo, uow repositories.UnitOfWork, events EventPublisher) ReturnService {
	t.Helper()
	deps := ReturnServiceDeps{
		Orders:      orders,
		Returns:     returns,
		Clock:       fixedClock(),
		IDGenerator: seqIDs(),
		Events:      events,
	}
	if uow != nil {
		deps.UnitOfWork = uow
	}
	svc, err := NewReturnService(deps)
	if err != nil {
		t.Fatalf("NewReturnService: %v", err)
	}
	return svc
}

func TestProcessReturnHappyPath(t *testing.T) {
	order := soldOrder(t)
	var statusWrites []domain.OrderStatus
	orders := &stubOrderRepo{
		findFn: func(_ context.Context, id string) (domain.Order, error) {
			if id != order.ID {
				return domain.Order{}, notFoundErr("order " + id)
			}
			return order, nil
		},
		updateStatusFn: func(_ context.Context, _ string, status domain.OrderStatus) error {
			statusWrites = append(statusWrites, status)
			return nil
		},
	}
	var insertedReturn *domain.Return
	var insertedItems []domain.ReturnItem
	returns := &stubReturnRepo{
		insertFn: func(_ context.Context, ret domain.Return) error {
			insertedReturn = &ret
			return nil
		},
		insertItemsFn: func(_ context.Context, items []domain.ReturnItem) error {
			insertedItems = items
			return nil
		},
	}
	uow := &recordingUnitOfWork{}
	publisher := &capturingPublisher{}
	svc := newTestReturnService(t, orders, returns, uow, publisher)

	ret, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Reason:  "shrunk in wash",
		Items: []ReturnItemRequest{
			{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")},
			{ProductID: "prd_suit", Quantity: 2, RefundAmount: dec(t, "45.00")},
		},
	})
	if err != nil {
		t.Fatalf("ProcessReturn: %v", err)
	}

	if !strings.HasPrefix(ret.ID, "ret_") {
		t.Fatalf("return ID %q missing ret_ prefix", ret.ID)
	}
	if !ret.RefundAmount.Equal(dec(t, "60.50")) {
		t.Fatalf("RefundAmount = %s, want 60.50", ret.RefundAmount)
	}
	if uow.calls != 1 {
		t.Fatalf("expected one unit of work, got %d", uow.calls)
	}
	if insertedReturn == nil {
		t.Fatal("return was not persisted")
	}
	if len(insertedItems) != 2 {
		t.Fatalf("persisted %d items, want 2", len(insertedItems))
	}
	if insertedItems[0].ProductName != "Shirt" || !insertedItems[0].Rate.Equal(dec(t, "15.50")) {
		t.Fatalf("item snapshot = %q @ %s, want Shirt @ 15.50", insertedItems[0].ProductName, insertedItems[0].Rate)
	}
	if len(statusWrites) != 1 || statusWrites[0] != domain.OrderStatusReturned {
		t.Fatalf("expected order flipped to returned, got %v", statusWrites)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != returnEventCreated {
		t.Fatalf("expected one %s event, got %+v", returnEventCreated, publisher.events)
	}
}

func TestProcessReturnRequiresOrderID(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		Items: []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessReturnRequiresItems(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{OrderID: "ord_1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessReturnUnknownOrder(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_ghost",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1}},
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestProcessReturnAlreadyReturned(t *testing.T) {
	order := soldOrder(t)
	order.Status = domain.OrderStatusReturned
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
	}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1}},
	})
	if !errors.Is(err, ErrReturnAlreadyProcessed) {
		t.Fatalf("expected ErrReturnAlreadyProcessed, got %v", err)
	}
}

func TestProcessReturnItemNotOnOrder(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
	}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_curtain", Quantity: 1}},
	})
	if !errors.Is(err, ErrReturnItemMismatch) {
		t.Fatalf("expected ErrReturnItemMismatch, got %v", err)
	}
}

func TestProcessReturnQuantityExceeded(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
	}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 3}},
	})
	if !errors.Is(err, ErrReturnQuantityExceeded) {
		t.Fatalf("expected ErrReturnQuantityExceeded, got %v", err)
	}
}

func TestProcessReturnSplitQuantityAcrossRequestsExceeded(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
	}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items: []ReturnItemRequest{
			{ProductID: "prd_shirt", Quantity: 1},
			{ProductID: "prd_shirt", Quantity: 2},
		},
	})
	if !errors.Is(err, ErrReturnQuantityExceeded) {
		t.Fatalf("expected ErrReturnQuantityExceeded, got %v", err)
	}
}

func TestProcessReturnNegativeRefundRejected(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "-5")}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessReturnAggregateMismatch(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID:      "ord_1",
		RefundAmount: decPtr(t, "99.99"),
		Items:        []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if !errors.Is(err, ErrReturnAmountMismatch) {
		t.Fatalf("expected ErrReturnAmountMismatch, got %v", err)
	}
}

func TestProcessReturnStatedZeroAgainstNonZeroItems(t *testing.T) {
	svc := newTestReturnService(t, &stubOrderRepo{}, &stubReturnRepo{}, nil, nil)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID:      "ord_1",
		RefundAmount: decPtr(t, "0"),
		Items:        []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if !errors.Is(err, ErrReturnAmountMismatch) {
		t.Fatalf("expected ErrReturnAmountMismatch, got %v", err)
	}
}

func TestProcessReturnAbsentAggregateDerivesFromItems(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
	}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, &recordingUnitOfWork{}, nil)

	ret, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if err != nil {
		t.Fatalf("ProcessReturn: %v", err)
	}
	if !ret.RefundAmount.Equal(dec(t, "15.50")) {
		t.Fatalf("RefundAmount = %s, want 15.50", ret.RefundAmount)
	}
}

func TestProcessReturnInconsistentOnNonAtomicBackend(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
		updateStatusFn: func(context.Context, string, domain.OrderStatus) error {
			return errors.New("write timed out")
		},
	}
	publisher := &capturingPublisher{}
	// No unit of work: the default noop backend cannot roll back.
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, nil, publisher)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if !errors.Is(err, ErrReturnInconsistent) {
		t.Fatalf("expected ErrReturnInconsistent, got %v", err)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != returnEventReconciliationRequired {
		t.Fatalf("expected %s event, got %+v", returnEventReconciliationRequired, publisher.events)
	}
}

func TestProcessReturnInconsistentOnInjectedNonAtomicBackend(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
		updateStatusFn: func(context.Context, string, domain.OrderStatus) error {
			return errors.New("write timed out")
		},
	}
	publisher := &capturingPublisher{}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, passthroughUnitOfWork{}, publisher)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if !errors.Is(err, ErrReturnInconsistent) {
		t.Fatalf("expected ErrReturnInconsistent, got %v", err)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != returnEventReconciliationRequired {
		t.Fatalf("expected %s event, got %+v", returnEventReconciliationRequired, publisher.events)
	}
}

func TestProcessReturnAtomicBackendPropagatesError(t *testing.T) {
	order := soldOrder(t)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) { return order, nil },
		updateStatusFn: func(context.Context, string, domain.OrderStatus) error {
			return errors.New("write timed out")
		},
	}
	publisher := &capturingPublisher{}
	svc := newTestReturnService(t, orders, &stubReturnRepo{}, &recordingUnitOfWork{}, publisher)

	_, err := svc.ProcessReturn(context.Background(), ProcessReturnCommand{
		OrderID: "ord_1",
		Items:   []ReturnItemRequest{{ProductID: "prd_shirt", Quantity: 1, RefundAmount: dec(t, "15.50")}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrReturnInconsistent) {
		t.Fatalf("atomic backend must not report inconsistency, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %+v", publisher.events)
	}
}

func TestListReturnsPassesThrough(t *testing.T) {
	want := []domain.ReturnRecord{{Return: domain.Return{ID: "ret_1", OrderID: "ord_1"}}}
	returns := &stubReturnRepo{
		listJoinedFn: func(context.Context) ([]domain.ReturnRecord, error) { return want, nil },
	}
	svc := newTestReturnService(t, &stubOrderRepo{}, returns, nil, nil)

	got, err := svc.ListReturns(context.Background())
	if err != nil {
		t.Fatalf("ListReturns: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ret_1" {
		t.Fatalf("unexpected records: %+v", got)
	}
}
