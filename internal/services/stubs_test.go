package services

import (
	"context"
	"errors"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

type fakeRepoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *fakeRepoError) Error() string       { return e.msg }
func (e *fakeRepoError) IsNotFound() bool    { return e.notFound }
func (e *fakeRepoError) IsConflict() bool    { return e.conflict }
func (e *fakeRepoError) IsUnavailable() bool { return e.unavailable }

func notFoundErr(msg string) error {
	return &fakeRepoError{msg: msg, notFound: true}
}

type stubProductRepo struct {
	findFn        func(context.Context, string) (domain.Product, error)
	findBarcodeFn func(context.Context, string) (domain.Product, error)
	insertFn      func(context.Context, domain.Product) error
	updateFn      func(context.Context, domain.Product) error
	deleteFn      func(context.Context, string) error
	listFn        func(context.Context) ([]domain.Product, error)
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Update(ctx context.Context, product domain.Product) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) Delete(ctx context.Context, productID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, productID)
	}
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn != nil {
		return s.findFn(ctx, productID)
	}
	return domain.Product{}, notFoundErr("product " + productID)
}

func (s *stubProductRepo) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	if s.findBarcodeFn != nil {
		return s.findBarcodeFn(ctx, barcode)
	}
	return domain.Product{}, notFoundErr("barcode " + barcode)
}

func (s *stubProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

type stubCustomerRepo struct {
	findFn   func(context.Context, string) (domain.Customer, error)
	insertFn func(context.Context, domain.Customer) error
	updateFn func(context.Context, domain.Customer) error
	deleteFn func(context.Context, string) error
	listFn   func(context.Context) ([]domain.Customer, error)
}

func (s *stubCustomerRepo) Insert(ctx context.Context, customer domain.Customer) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, customer)
	}
	return nil
}

func (s *stubCustomerRepo) Update(ctx context.Context, customer domain.Customer) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, customer)
	}
	return nil
}

func (s *stubCustomerRepo) Delete(ctx context.Context, customerID string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, customerID)
	}
	return nil
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, customerID string) (domain.Customer, error) {
	if s.findFn != nil {
		return s.findFn(ctx, customerID)
	}
	return domain.Customer{}, notFoundErr("customer " + customerID)
}

func (s *stubCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

type stubOrderRepo struct {
	insertFn         func(context.Context, domain.Order) error
	findFn           func(context.Context, string) (domain.Order, error)
	listFn           func(context.Context, repositories.OrderListFilter) ([]domain.Order, error)
	updateStatusFn   func(context.Context, string, domain.OrderStatus) error
	updatePaymentFn  func(context.Context, string, domain.PaymentStatus) error
	updateDeliveryFn func(context.Context, string, domain.DeliveryStatus) error
	deleteAllFn      func(context.Context) error
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Order{}, notFoundErr("order " + orderID)
}

func (s *stubOrderRepo) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, orderID, status)
	}
	return nil
}

func (s *stubOrderRepo) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	if s.updatePaymentFn != nil {
		return s.updatePaymentFn(ctx, orderID, status)
	}
	return nil
}

func (s *stubOrderRepo) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) error {
	if s.updateDeliveryFn != nil {
		return s.updateDeliveryFn(ctx, orderID, status)
	}
	return nil
}

func (s *stubOrderRepo) DeleteAll(ctx context.Context) error {
	if s.deleteAllFn != nil {
		return s.deleteAllFn(ctx)
	}
	return nil
}

type stubReturnRepo struct {
	insertFn      func(context.Context, domain.Return) error
	insertItemsFn func(context.Context, []domain.ReturnItem) error
	listJoinedFn  func(context.Context) ([]domain.ReturnRecord, error)
	deleteAllFn   func(context.Context) error
}

func (s *stubReturnRepo) Insert(ctx context.Context, ret domain.Return) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, ret)
	}
	return nil
}

func (s *stubReturnRepo) InsertItems(ctx context.Context, items []domain.ReturnItem) error {
	if s.insertItemsFn != nil {
		return s.insertItemsFn(ctx, items)
	}
	return nil
}

func (s *stubReturnRepo) ListJoined(ctx context.Context) ([]domain.ReturnRecord, error) {
	if s.listJoinedFn != nil {
		return s.listJoinedFn(ctx)
	}
	return nil, nil
}

func (s *stubReturnRepo) DeleteAll(ctx context.Context) error {
	if s.deleteAllFn != nil {
		return s.deleteAllFn(ctx)
	}
	return nil
}

type stubSettingsRepo struct {
	getFn    func(context.Context) (domain.Settings, error)
	updateFn func(context.Context, domain.Settings) (domain.Settings, error)
}

func (s *stubSettingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	if s.getFn != nil {
		return s.getFn(ctx)
	}
	return domain.Settings{}, notFoundErr("settings")
}

func (s *stubSettingsRepo) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, settings)
	}
	return settings, nil
}

type stubSettingsService struct {
	settings domain.Settings
	err      error
}

func (s *stubSettingsService) GetSettings(context.Context) (domain.Settings, error) {
	if s.err != nil {
		return domain.Settings{}, s.err
	}
	return s.settings, nil
}

func (s *stubSettingsService) UpdateSettings(context.Context, UpdateSettingsCommand) (domain.Settings, error) {
	return domain.Settings{}, errors.New("not implemented")
}

type capturingPublisher struct {
	events []Event
	err    error
}

func (p *capturingPublisher) PublishEvent(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

var (
	_ repositories.ProductRepository  = (*stubProductRepo)(nil)
	_ repositories.CustomerRepository = (*stubCustomerRepo)(nil)
	_ repositories.OrderRepository    = (*stubOrderRepo)(nil)
	_ repositories.ReturnRepository   = (*stubReturnRepo)(nil)
	_ repositories.SettingsRepository = (*stubSettingsRepo)(nil)
)
