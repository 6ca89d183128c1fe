package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/payments"
	"github.com/cleanpress/api/internal/repositories"
)

const (
	orderEventCreated          = "order.created"
	orderEventStatusChanged    = "order.status.changed"
	orderEventPaymentCollected = "order.payment.collected"
	orderEventDelivered        = "order.delivered"

	orderIDPrefix = "ord_"

	walkInCustomerName = "Walk-in"
)

var orderStateTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusCompleted, domain.OrderStatusCancelled},
	domain.OrderStatusCompleted: {domain.OrderStatusReturned, domain.OrderStatusCancelled},
	domain.OrderStatusCancelled: {},
	domain.OrderStatusReturned:  {},
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Products    repositories.ProductRepository
	Customers   repositories.CustomerRepository
	Settings    SettingsService
	Pricing     *PricingEngine
	CardCharger payments.Provider
	UnitOfWork  repositories.UnitOfWork
	Clock       func() time.Time
	IDGenerator func() string
	Events      EventPublisher
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders      repositories.OrderRepository
	products    repositories.ProductRepository
	customers   repositories.CustomerRepository
	settings    SettingsService
	pricing     *PricingEngine
	cardCharger payments.Provider
	unitOfWork  repositories.UnitOfWork
	clock       func() time.Time
	newID       func() string
	events      EventPublisher
	logger      func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product repository is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("order service: settings service is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("order service: pricing engine is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}

	charger := deps.CardCharger
	if charger == nil {
		charger = payments.DisabledProvider{}
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

	return &orderService{
		orders:      deps.Orders,
		products:    deps.Products,
		customers:   deps.Customers,
		settings:    deps.Settings,
		pricing:     deps.Pricing,
		cardCharger: charger,
		unitOfWork:  unit,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		events: deps.Events,
		logger: logger,
	}, nil
}

func (s *orderService) Checkout(ctx context.Context, cmd CheckoutCommand) (domain.Order, error) {
	if len(cmd.Lines) == 0 {
		return domain.Order{}, fmt.Errorf("%w: cart must contain at least one item", ErrEmptyCart)
	}
	if !cmd.PaymentMethod.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, cmd.PaymentMethod)
	}

	customerName := walkInCustomerName
	customerID := strings.TrimSpace(cmd.CustomerID)
	if customerID != "" {
		if s.customers == nil {
			return domain.Order{}, fmt.Errorf("%w: customer lookup is not configured", ErrInvalidInput)
		}
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			if isRepoNotFound(err) {
				return domain.Order{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
			}
			return domain.Order{}, err
		}
		customerName = customer.Name
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}

	now := s.clock()
	lines := make([]domain.OrderLine, 0, len(cmd.Lines))
	priced := make([]domain.LinePricingBreakdown, 0, len(cmd.Lines))
	for i, line := range cmd.Lines {
		if !line.Service.Valid() {
			return domain.Order{}, fmt.Errorf("%w: line %d has unknown service %q", ErrInvalidInput, i, line.Service)
		}
		if line.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i)
		}
		if line.DiscountPct.IsNegative() || line.DiscountPct.GreaterThan(oneHundred) {
			return domain.Order{}, fmt.Errorf("%w: line %d discount must be between 0 and 100", ErrInvalidInput, i)
		}

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if isRepoNotFound(err) {
				return domain.Order{}, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}
			return domain.Order{}, err
		}

		breakdown := s.pricing.PriceLine(ctx, product, line.Service, line.Quantity, line.DiscountPct)
		priced = append(priced, breakdown)
		lines = append(lines, domain.OrderLine{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Barcode:        product.Barcode,
			Service:        line.Service,
			Quantity:       breakdown.Quantity,
			Rate:           breakdown.Rate,
			DiscountPct:    line.DiscountPct,
			Subtotal:       breakdown.Subtotal,
			DiscountAmount: breakdown.Discount,
		})
	}

	totals := s.pricing.Aggregate(ctx, priced, settings.TaxRatePct)

	order := domain.Order{
		ID:            orderIDPrefix + s.newID(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		Lines:         lines,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		TaxRatePct:    settings.TaxRatePct,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: cmd.PaymentMethod,
		Status:        domain.OrderStatusPending,
		Notes:         strings.TrimSpace(cmd.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch cmd.PaymentMethod {
	case domain.PaymentCard:
		result, err := s.cardCharger.Charge(ctx, payments.ChargeRequest{
			Amount:      domain.RoundMoney(order.Total),
			Currency:    settings.Currency,
			CardToken:   strings.TrimSpace(cmd.CardToken),
			Description: "order " + order.ID,
			Metadata:    map[string]string{"orderId": order.ID},
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		order.PaymentRef = result.Reference
		order.PaymentStatus = domain.PaymentStatusPaid
	case domain.PaymentCOD:
		order.PaymentStatus = domain.PaymentStatusUnpaid
		order.DeliveryStatus = domain.DeliveryStatusPending
	case domain.PaymentCredit:
		order.PaymentStatus = domain.PaymentStatusUnpaid
	default:
		order.PaymentStatus = domain.PaymentStatusPaid
	}

	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		return s.mapRepositoryError(s.orders.Insert(txCtx, order))
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.publishEvent(ctx, Event{
		Type:       orderEventCreated,
		OrderID:    order.ID,
		OccurredAt: now,
		Metadata: map[string]any{
			"total":         order.Total.String(),
			"paymentMethod": string(order.PaymentMethod),
		},
	})

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	for _, status := range filter.Status {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
		}
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status == status {
		return order, nil
	}
	if !transitionAllowed(order.Status, status) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.clock()

	s.publishEvent(ctx, Event{
		Type:       orderEventStatusChanged,
		OrderID:    order.ID,
		OccurredAt: order.UpdatedAt,
		Metadata: map[string]any{
			"previousStatus": string(previous),
			"currentStatus":  string(status),
		},
	})

	return order, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) (domain.Order, error) {
	if status != domain.PaymentStatusUnpaid && status != domain.PaymentStatusPaid {
		return domain.Order{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.PaymentMethod != domain.PaymentCOD && order.PaymentMethod != domain.PaymentCredit {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrNotCashOnDelivery, order.ID)
	}

	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, status); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	order.PaymentStatus = status
	order.UpdatedAt = s.clock()

	if status == domain.PaymentStatusPaid {
		s.publishEvent(ctx, Event{
			Type:       orderEventPaymentCollected,
			OrderID:    order.ID,
			OccurredAt: order.UpdatedAt,
			Metadata:   map[string]any{"total": order.Total.String()},
		})
	}

	return order, nil
}

func (s *orderService) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) (domain.Order, error) {
	if status != domain.DeliveryStatusPending && status != domain.DeliveryStatusDelivered {
		return domain.Order{}, fmt.Errorf("%w: unknown delivery status %q", ErrInvalidInput, status)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.PaymentMethod != domain.PaymentCOD {
		return domain.Order{}, fmt.Errorf("%w: %s", ErrNotCashOnDelivery, order.ID)
	}

	if err := s.orders.UpdateDeliveryStatus(ctx, order.ID, status); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	order.DeliveryStatus = status
	order.UpdatedAt = s.clock()

	if status == domain.DeliveryStatusDelivered {
		s.publishEvent(ctx, Event{
			Type:       orderEventDelivered,
			OrderID:    order.ID,
			OccurredAt: order.UpdatedAt,
		})
	}

	return order, nil
}

func (s *orderService) ClearOrders(ctx context.Context) error {
	if err := s.orders.DeleteAll(ctx); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "orders.cleared", nil)
	return nil
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}

	return err
}

func (s *orderService) publishEvent(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":  event.Type,
			"order": event.OrderID,
			"error": err.Error(),
		})
	}
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, allowed := range orderStateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
