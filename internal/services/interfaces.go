package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

// CatalogService manages the product catalogue and barcode lookups.
type CatalogService interface {
	CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, cmd UpsertProductCommand) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// UpsertProductCommand carries the writable product fields.
type UpsertProductCommand struct {
	Name            string
	Category        string
	Barcode         string
	IronRate        decimal.Decimal
	WashAndIronRate decimal.Decimal
	DryCleanRate    decimal.Decimal
}

// CustomerService manages customer records.
type CustomerService interface {
	CreateCustomer(ctx context.Context, cmd UpsertCustomerCommand) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, cmd UpsertCustomerCommand) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	GetCustomer(ctx context.Context, customerID string) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// UpsertCustomerCommand carries the writable customer fields.
type UpsertCustomerCommand struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// CheckoutLine is one requested cart line at checkout time. Pricing is
// derived server-side from the catalogue; the client never supplies amounts.
type CheckoutLine struct {
	ProductID   string
	Service     domain.ServiceVariant
	Quantity    int
	DiscountPct decimal.Decimal
}

// CheckoutCommand creates an order from a cart.
type CheckoutCommand struct {
	CustomerID    string
	Lines         []CheckoutLine
	PaymentMethod domain.PaymentMethod
	CardToken     string
	Notes         string
}

// OrderService owns order creation and lifecycle transitions.
type OrderService interface {
	Checkout(ctx context.Context, cmd CheckoutCommand) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) (domain.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) (domain.Order, error)
	ClearOrders(ctx context.Context) error
}

// ReturnItemRequest is one requested refund line.
type ReturnItemRequest struct {
	ProductID    string
	Quantity     int
	RefundAmount decimal.Decimal
}

// ProcessReturnCommand records a partial or full refund against an order.
// RefundAmount is optional; when absent the total derives from the items, and
// when stated it must match their sum, including an explicit zero.
type ProcessReturnCommand struct {
	OrderID      string
	Items        []ReturnItemRequest
	Reason       string
	RefundAmount *decimal.Decimal
}

// ReturnService is the returns ledger.
type ReturnService interface {
	ProcessReturn(ctx context.Context, cmd ProcessReturnCommand) (domain.Return, error)
	ListReturns(ctx context.Context) ([]domain.ReturnRecord, error)
	ClearReturns(ctx context.Context) error
}

// SettingsService reads and updates the store-wide settings document.
type SettingsService interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (domain.Settings, error)
}

// UpdateSettingsCommand carries the writable settings fields.
type UpdateSettingsCommand struct {
	StoreName  *string
	TaxRatePct *decimal.Decimal
	Currency   *string
}

// Event captures metadata for emitted domain events.
type Event struct {
	Type       string
	OrderID    string
	ReturnID   string
	OccurredAt time.Time
	Metadata   map[string]any
}

// EventPublisher publishes domain events for downstream consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (noopUnitOfWork) Atomic() bool { return false }
