package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

const (
	returnEventCreated                = "return.created"
	returnEventReconciliationRequired = "return.reconciliation_required"

	returnIDPrefix     = "ret_"
	returnItemIDPrefix = "rti_"
)

// ReturnServiceDeps bundles collaborators required to construct the return service.
type ReturnServiceDeps struct {
	Orders      repositories.OrderRepository
	Returns     repositories.ReturnRepository
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	Events      EventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type returnService struct {
	orders     repositories.OrderRepository
	returns    repositories.ReturnRepository
	unitOfWork repositories.UnitOfWork
	clock      func() time.Time
	newID      func() string
	events     EventPublisher
	logger     func(context.Context, string, map[string]any)
}

// NewReturnService wires dependencies into a concrete ReturnService implementation.
func NewReturnService(deps ReturnServiceDeps) (ReturnService, error) {
	if deps.Orders == nil {
		return nil, errors.New("return service: order repository is required")
	}
	if deps.Returns == nil {
		return nil, errors.New("return service: return repository is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &returnService{
		orders:     deps.Orders,
		returns:    deps.Returns,
		unitOfWork: unit,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		events: deps.Events,
		logger: logger,
	}, nil
}

// ProcessReturn records the refund and flips the order to returned. All three
// writes run in one unit of work: either the ledger entry, its items and the
// status change all land, or none do. The order is re-read inside the
// transaction so two tills processing the same order race on the status check
// and only one wins.
func (s *returnService) ProcessReturn(ctx context.Context, cmd ProcessReturnCommand) (domain.Return, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return domain.Return{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return domain.Return{}, fmt.Errorf("%w: at least one return item is required", ErrInvalidInput)
	}

	itemsTotal := decimal.Zero
	for i, item := range cmd.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.Return{}, fmt.Errorf("%w: item %d product id is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return domain.Return{}, fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidInput, i)
		}
		if item.RefundAmount.IsNegative() {
			return domain.Return{}, fmt.Errorf("%w: item %d refund amount must not be negative", ErrInvalidInput, i)
		}
		itemsTotal = itemsTotal.Add(item.RefundAmount)
	}

	refundTotal := itemsTotal
	if cmd.RefundAmount != nil && !cmd.RefundAmount.Equal(itemsTotal) {
		return domain.Return{}, fmt.Errorf("%w: stated %s, items sum to %s", ErrReturnAmountMismatch, cmd.RefundAmount, itemsTotal)
	}

	now := s.clock()
	ret := domain.Return{
		ID:           returnIDPrefix + s.newID(),
		OrderID:      orderID,
		Reason:       strings.TrimSpace(cmd.Reason),
		RefundAmount: refundTotal,
		CreatedAt:    now,
	}

	var wroteLedger bool
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		if order.Status == domain.OrderStatusReturned {
			return fmt.Errorf("%w: %s", ErrReturnAlreadyProcessed, order.ID)
		}

		items, err := buildReturnItems(ret.ID, order, cmd.Items, s.newID)
		if err != nil {
			return err
		}
		ret.Items = items

		if err := s.returns.Insert(txCtx, ret); err != nil {
			return s.mapRepositoryError(err)
		}
		wroteLedger = true
		if err := s.returns.InsertItems(txCtx, ret.Items); err != nil {
			return s.mapRepositoryError(err)
		}
		if err := s.orders.UpdateStatus(txCtx, order.ID, domain.OrderStatusReturned); err != nil {
			return s.mapRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		// A non-atomic unit of work cannot roll back the ledger entry, so
		// flag the state for reconciliation instead of pretending nothing
		// happened.
		if wroteLedger {
			if !s.unitOfWork.Atomic() {
				s.publishEvent(ctx, Event{
					Type:       returnEventReconciliationRequired,
					OrderID:    orderID,
					ReturnID:   ret.ID,
					OccurredAt: s.clock(),
					Metadata:   map[string]any{"error": err.Error()},
				})
				return domain.Return{}, fmt.Errorf("%w: %v", ErrReturnInconsistent, err)
			}
		}
		return domain.Return{}, err
	}

	s.publishEvent(ctx, Event{
		Type:       returnEventCreated,
		OrderID:    orderID,
		ReturnID:   ret.ID,
		OccurredAt: now,
		Metadata:   map[string]any{"refundAmount": ret.RefundAmount.String()},
	})

	return ret, nil
}

func (s *returnService) ListReturns(ctx context.Context) ([]domain.ReturnRecord, error) {
	records, err := s.returns.ListJoined(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return records, nil
}

func (s *returnService) ClearReturns(ctx context.Context) error {
	if err := s.returns.DeleteAll(ctx); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "returns.cleared", nil)
	return nil
}

// buildReturnItems validates the requested refund lines against the order and
// snapshots name, barcode, service and rate-at-sale onto the ledger items.
func buildReturnItems(returnID string, order domain.Order, requested []ReturnItemRequest, newID func() string) ([]domain.ReturnItem, error) {
	orderedQty := make(map[string]int, len(order.Lines))
	lineByProduct := make(map[string]domain.OrderLine, len(order.Lines))
	for _, line := range order.Lines {
		orderedQty[line.ProductID] += line.Quantity
		if _, ok := lineByProduct[line.ProductID]; !ok {
			lineByProduct[line.ProductID] = line
		}
	}

	requestedQty := make(map[string]int, len(requested))
	items := make([]domain.ReturnItem, 0, len(requested))
	for _, req := range requested {
		line, ok := lineByProduct[req.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrReturnItemMismatch, req.ProductID)
		}
		requestedQty[req.ProductID] += req.Quantity
		if requestedQty[req.ProductID] > orderedQty[req.ProductID] {
			return nil, fmt.Errorf("%w: product %s ordered %d, returning %d",
				ErrReturnQuantityExceeded, req.ProductID, orderedQty[req.ProductID], requestedQty[req.ProductID])
		}

		items = append(items, domain.ReturnItem{
			ID:           returnItemIDPrefix + newID(),
			ReturnID:     returnID,
			ProductID:    req.ProductID,
			ProductName:  line.ProductName,
			Barcode:      line.Barcode,
			Service:      line.Service,
			Quantity:     req.Quantity,
			Rate:         line.Rate,
			RefundAmount: req.RefundAmount,
		})
	}
	return items, nil
}

func (s *returnService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("return: repository unavailable: %w", err)
		}
	}

	return err
}

func (s *returnService) publishEvent(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.logger(ctx, "return.event.publish.failed", map[string]any{
			"type":   event.Type,
			"return": event.ReturnID,
			"error":  err.Error(),
		})
	}
}
