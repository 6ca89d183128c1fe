package repositories

import (
	"context"

	domain "github.com/cleanpress/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for
// dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Returns() ReturnRepository
	Settings() SettingsRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork groups repository operations in a transactional boundary when
// the backend supports one. Implementations that cannot provide atomicity
// must still run fn, propagate its error unchanged, and report false from
// Atomic so callers can surface partial writes instead of hiding them.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// ProductRepository persists the rate catalogue.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// CustomerRepository stores customer contact records.
type CustomerRepository interface {
	Insert(ctx context.Context, customer domain.Customer) error
	Update(ctx context.Context, customer domain.Customer) error
	Delete(ctx context.Context, customerID string) error
	FindByID(ctx context.Context, customerID string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

// OrderRepository persists order headers together with their immutable lines.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error
	UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) error
	DeleteAll(ctx context.Context) error
}

// OrderListFilter narrows order listings.
type OrderListFilter struct {
	CustomerID string
	Status     []domain.OrderStatus
}

// ReturnRepository records refunds and serves the joined returns listing.
type ReturnRepository interface {
	Insert(ctx context.Context, ret domain.Return) error
	InsertItems(ctx context.Context, items []domain.ReturnItem) error
	ListJoined(ctx context.Context) ([]domain.ReturnRecord, error)
	DeleteAll(ctx context.Context) error
}

// SettingsRepository stores the single store-wide settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}
