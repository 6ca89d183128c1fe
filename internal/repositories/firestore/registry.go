package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

// Registry wires every Firestore-backed repository around one shared provider.
type Registry struct {
	provider *pfirestore.Provider

	products  *ProductRepository
	customers *CustomerRepository
	orders    *OrderRepository
	returns   *ReturnRepository
	settings  *SettingsRepository
}

// NewRegistry constructs the repository registry for the given provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	customers, err := NewCustomerRepository(provider)
	if err != nil {
		return nil, err
	}
	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	returns, err := NewReturnRepository(provider)
	if err != nil {
		return nil, err
	}
	settings, err := NewSettingsRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:  provider,
		products:  products,
		customers: customers,
		orders:    orders,
		returns:   returns,
		settings:  settings,
	}, nil
}

func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

func (r *Registry) Products() repositories.ProductRepository   { return r.products }
func (r *Registry) Customers() repositories.CustomerRepository { return r.customers }
func (r *Registry) Orders() repositories.OrderRepository       { return r.orders }
func (r *Registry) Returns() repositories.ReturnRepository     { return r.returns }
func (r *Registry) Settings() repositories.SettingsRepository  { return r.settings }

// RunInTx executes fn inside a Firestore transaction. The transaction handle
// travels on the context, so repository calls made with the inner context all
// commit or abort together.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.provider.RunTransaction(ctx, fn)
}

func (r *Registry) Atomic() bool { return true }

var _ repositories.Registry = (*Registry)(nil)
