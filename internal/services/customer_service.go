package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

const customerIDPrefix = "cus_"

// CustomerServiceDeps bundles collaborators required to construct the customer service.
type CustomerServiceDeps struct {
	Customers   repositories.CustomerRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type customerService struct {
	customers repositories.CustomerRepository
	clock     func() time.Time
	newID     func() string
	logger    func(context.Context, string, map[string]any)
}

// NewCustomerService wires dependencies into a concrete CustomerService implementation.
func NewCustomerService(deps CustomerServiceDeps) (CustomerService, error) {
	if deps.Customers == nil {
		return nil, errors.New("customer service: customer repository is required")
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

	return &customerService{
		customers: deps.Customers,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, cmd UpsertCustomerCommand) (domain.Customer, error) {
	customer, err := buildCustomer(cmd)
	if err != nil {
		return domain.Customer{}, err
	}

	now := s.clock()
	customer.ID = customerIDPrefix + s.newID()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	if err := s.customers.Insert(ctx, customer); err != nil {
		return domain.Customer{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "customer.created", map[string]any{"customerId": customer.ID})
	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID string, cmd UpsertCustomerCommand) (domain.Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}

	existing, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Customer{}, s.mapRepositoryError(err)
	}

	customer, err := buildCustomer(cmd)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.ID = existing.ID
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = s.clock()

	if err := s.customers.Update(ctx, customer); err != nil {
		return domain.Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := s.customers.Delete(ctx, customerID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "customer.deleted", map[string]any{"customerId": customerID})
	return nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return domain.Customer{}, s.mapRepositoryError(err)
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return customers, nil
}

func buildCustomer(cmd UpsertCustomerCommand) (domain.Customer, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	return domain.Customer{
		Name:    name,
		Phone:   strings.TrimSpace(cmd.Phone),
		Email:   strings.TrimSpace(cmd.Email),
		Address: strings.TrimSpace(cmd.Address),
	}, nil
}

func (s *customerService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrCustomerNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("customer: repository unavailable: %w", err)
		}
	}

	return err
}
