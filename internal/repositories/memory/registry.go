// Package memory provides an in-process repository registry used by local
// development and tests. RunInTx takes a full snapshot and restores it when
// fn fails; a transaction gate keeps standalone writes out of the window
// between snapshot and rollback, so the atomicity contract matches the
// Firestore backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string       { return e.msg }
func (e *notFoundError) IsNotFound() bool    { return true }
func (e *notFoundError) IsConflict() bool    { return false }
func (e *notFoundError) IsUnavailable() bool { return false }

func notFound(kind, id string) error {
	return &notFoundError{msg: fmt.Sprintf("memory: %s %s not found", kind, id)}
}

// Registry is a mutex-guarded map store implementing repositories.Registry.
// txMu is the transaction gate: RunInTx holds it for the whole unit of work
// and standalone writes take it per call, so a rollback can never erase a
// write committed by another request. mu guards the maps themselves.
type Registry struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products    map[string]domain.Product
	customers   map[string]domain.Customer
	orders      map[string]domain.Order
	returns     map[string]domain.Return
	returnItems map[string]domain.ReturnItem
	settings    *domain.Settings
}

// NewRegistry constructs an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		products:    make(map[string]domain.Product),
		customers:   make(map[string]domain.Customer),
		orders:      make(map[string]domain.Order),
		returns:     make(map[string]domain.Return),
		returnItems: make(map[string]domain.ReturnItem),
	}
}

func (r *Registry) Close(context.Context) error { return nil }

func (r *Registry) Products() repositories.ProductRepository   { return &productRepo{r} }
func (r *Registry) Customers() repositories.CustomerRepository { return &customerRepo{r} }
func (r *Registry) Orders() repositories.OrderRepository       { return &orderRepo{r} }
func (r *Registry) Returns() repositories.ReturnRepository     { return &returnRepo{r} }
func (r *Registry) Settings() repositories.SettingsRepository  { return &settingsRepo{r} }

// RunInTx runs fn as the only unit of work in flight. Writes made with the
// inner context join the transaction; writes on any other context block on
// the gate until fn commits or the snapshot is restored.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		r.mu.Lock()
		r.restoreLocked(snapshot)
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Registry) Atomic() bool { return true }

type txKey struct{}

// lockWrite takes the transaction gate before the map lock so a standalone
// write cannot land between a snapshot and its rollback. Writes inside
// RunInTx carry the transaction context and already own the gate.
func (r *Registry) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) == nil {
		r.txMu.Lock()
		r.mu.Lock()
		return func() {
			r.mu.Unlock()
			r.txMu.Unlock()
		}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

type registrySnapshot struct {
	products    map[string]domain.Product
	customers   map[string]domain.Customer
	orders      map[string]domain.Order
	returns     map[string]domain.Return
	returnItems map[string]domain.ReturnItem
	settings    *domain.Settings
}

func (r *Registry) snapshotLocked() registrySnapshot {
	snap := registrySnapshot{
		products:    make(map[string]domain.Product, len(r.products)),
		customers:   make(map[string]domain.Customer, len(r.customers)),
		orders:      make(map[string]domain.Order, len(r.orders)),
		returns:     make(map[string]domain.Return, len(r.returns)),
		returnItems: make(map[string]domain.ReturnItem, len(r.returnItems)),
	}
	for k, v := range r.products {
		snap.products[k] = v
	}
	for k, v := range r.customers {
		snap.customers[k] = v
	}
	for k, v := range r.orders {
		snap.orders[k] = v
	}
	for k, v := range r.returns {
		snap.returns[k] = v
	}
	for k, v := range r.returnItems {
		snap.returnItems[k] = v
	}
	if r.settings != nil {
		copied := *r.settings
		snap.settings = &copied
	}
	return snap
}

func (r *Registry) restoreLocked(snap registrySnapshot) {
	r.products = snap.products
	r.customers = snap.customers
	r.orders = snap.orders
	r.returns = snap.returns
	r.returnItems = snap.returnItems
	r.settings = snap.settings
}

type productRepo struct{ r *Registry }

func (p *productRepo) Insert(ctx context.Context, product domain.Product) error {
	defer p.r.lockWrite(ctx)()
	p.r.products[product.ID] = product
	return nil
}

func (p *productRepo) Update(ctx context.Context, product domain.Product) error {
	defer p.r.lockWrite(ctx)()
	if _, ok := p.r.products[product.ID]; !ok {
		return notFound("product", product.ID)
	}
	p.r.products[product.ID] = product
	return nil
}

func (p *productRepo) Delete(ctx context.Context, productID string) error {
	defer p.r.lockWrite(ctx)()
	if _, ok := p.r.products[productID]; !ok {
		return notFound("product", productID)
	}
	delete(p.r.products, productID)
	return nil
}

func (p *productRepo) FindByID(_ context.Context, productID string) (domain.Product, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	product, ok := p.r.products[productID]
	if !ok {
		return domain.Product{}, notFound("product", productID)
	}
	return product, nil
}

func (p *productRepo) FindByBarcode(_ context.Context, barcode string) (domain.Product, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	for _, product := range p.r.products {
		if product.Barcode != "" && product.Barcode == barcode {
			return product, nil
		}
	}
	return domain.Product{}, notFound("product barcode", barcode)
}

func (p *productRepo) List(_ context.Context) ([]domain.Product, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	products := make([]domain.Product, 0, len(p.r.products))
	for _, product := range p.r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})
	return products, nil
}

type customerRepo struct{ r *Registry }

func (c *customerRepo) Insert(ctx context.Context, customer domain.Customer) error {
	defer c.r.lockWrite(ctx)()
	c.r.customers[customer.ID] = customer
	return nil
}

func (c *customerRepo) Update(ctx context.Context, customer domain.Customer) error {
	defer c.r.lockWrite(ctx)()
	if _, ok := c.r.customers[customer.ID]; !ok {
		return notFound("customer", customer.ID)
	}
	c.r.customers[customer.ID] = customer
	return nil
}

func (c *customerRepo) Delete(ctx context.Context, customerID string) error {
	defer c.r.lockWrite(ctx)()
	if _, ok := c.r.customers[customerID]; !ok {
		return notFound("customer", customerID)
	}
	delete(c.r.customers, customerID)
	return nil
}

func (c *customerRepo) FindByID(_ context.Context, customerID string) (domain.Customer, error) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	customer, ok := c.r.customers[customerID]
	if !ok {
		return domain.Customer{}, notFound("customer", customerID)
	}
	return customer, nil
}

func (c *customerRepo) List(_ context.Context) ([]domain.Customer, error) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	customers := make([]domain.Customer, 0, len(c.r.customers))
	for _, customer := range c.r.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool {
		return strings.ToLower(customers[i].Name) < strings.ToLower(customers[j].Name)
	})
	return customers, nil
}

type orderRepo struct{ r *Registry }

func (o *orderRepo) Insert(ctx context.Context, order domain.Order) error {
	defer o.r.lockWrite(ctx)()
	o.r.orders[order.ID] = order
	return nil
}

func (o *orderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	o.r.mu.Lock()
	defer o.r.mu.Unlock()
	order, ok := o.r.orders[orderID]
	if !ok {
		return domain.Order{}, notFound("order", orderID)
	}
	return order, nil
}

func (o *orderRepo) List(_ context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	o.r.mu.Lock()
	defer o.r.mu.Unlock()
	orders := make([]domain.Order, 0, len(o.r.orders))
	for _, order := range o.r.orders {
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, order.Status) {
			continue
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (o *orderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return o.mutate(ctx, orderID, func(order *domain.Order) { order.Status = status })
}

func (o *orderRepo) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	return o.mutate(ctx, orderID, func(order *domain.Order) { order.PaymentStatus = status })
}

func (o *orderRepo) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) error {
	return o.mutate(ctx, orderID, func(order *domain.Order) { order.DeliveryStatus = status })
}

func (o *orderRepo) DeleteAll(ctx context.Context) error {
	defer o.r.lockWrite(ctx)()
	o.r.orders = make(map[string]domain.Order)
	return nil
}

func (o *orderRepo) mutate(ctx context.Context, orderID string, apply func(*domain.Order)) error {
	defer o.r.lockWrite(ctx)()
	order, ok := o.r.orders[orderID]
	if !ok {
		return notFound("order", orderID)
	}
	apply(&order)
	o.r.orders[orderID] = order
	return nil
}

type returnRepo struct{ r *Registry }

func (t *returnRepo) Insert(ctx context.Context, ret domain.Return) error {
	defer t.r.lockWrite(ctx)()
	stored := ret
	stored.Items = nil
	t.r.returns[ret.ID] = stored
	return nil
}

func (t *returnRepo) InsertItems(ctx context.Context, items []domain.ReturnItem) error {
	defer t.r.lockWrite(ctx)()
	for _, item := range items {
		t.r.returnItems[item.ID] = item
	}
	return nil
}

func (t *returnRepo) ListJoined(_ context.Context) ([]domain.ReturnRecord, error) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()

	itemsByReturn := make(map[string][]domain.ReturnItem)
	for _, item := range t.r.returnItems {
		itemsByReturn[item.ReturnID] = append(itemsByReturn[item.ReturnID], item)
	}

	records := make([]domain.ReturnRecord, 0, len(t.r.returns))
	for _, ret := range t.r.returns {
		record := domain.ReturnRecord{Return: ret}
		record.Items = itemsByReturn[ret.ID]
		if order, ok := t.r.orders[ret.OrderID]; ok {
			record.OrderTotal = order.Total
			record.CustomerName = order.CustomerName
			if customer, found := t.r.customers[order.CustomerID]; found {
				record.CustomerPhone = customer.Phone
			}
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (t *returnRepo) DeleteAll(ctx context.Context) error {
	defer t.r.lockWrite(ctx)()
	t.r.returns = make(map[string]domain.Return)
	t.r.returnItems = make(map[string]domain.ReturnItem)
	return nil
}

type settingsRepo struct{ r *Registry }

func (s *settingsRepo) Get(context.Context) (domain.Settings, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if s.r.settings == nil {
		return domain.Settings{}, notFound("settings", "store")
	}
	return *s.r.settings, nil
}

func (s *settingsRepo) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	defer s.r.lockWrite(ctx)()
	copied := settings
	s.r.settings = &copied
	return settings, nil
}

func containsStatus(statuses []domain.OrderStatus, status domain.OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

var _ repositories.Registry = (*Registry)(nil)
