package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/cleanpress/api/internal/domain"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

const customerCollection = "customers"

type customerDocument struct {
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone"`
	Email     string    `firestore:"email"`
	Address   string    `firestore:"address"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// CustomerRepository persists customer contact records in Firestore.
type CustomerRepository struct {
	base *pfirestore.BaseRepository[customerDocument]
}

// NewCustomerRepository constructs a Firestore-backed customer repository.
func NewCustomerRepository(provider *pfirestore.Provider) (*CustomerRepository, error) {
	if provider == nil {
		return nil, errors.New("customer repository requires firestore provider")
	}
	return &CustomerRepository{
		base: pfirestore.NewBaseRepository[customerDocument](provider, customerCollection, nil),
	}, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, customer domain.Customer) error {
	return r.base.Set(ctx, customer.ID, toCustomerDocument(customer))
}

func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	return r.base.Set(ctx, customer.ID, toCustomerDocument(customer))
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID string) error {
	return r.base.Delete(ctx, customerID)
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string) (domain.Customer, error) {
	doc, err := r.base.Get(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	return fromCustomerDocument(doc.ID, doc.Data), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(docs))
	for _, doc := range docs {
		customers = append(customers, fromCustomerDocument(doc.ID, doc.Data))
	}
	return customers, nil
}

func toCustomerDocument(customer domain.Customer) customerDocument {
	return customerDocument{
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

func fromCustomerDocument(id string, doc customerDocument) domain.Customer {
	return domain.Customer{
		ID:        id,
		Name:      doc.Name,
		Phone:     doc.Phone,
		Email:     doc.Email,
		Address:   doc.Address,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

var _ repositories.CustomerRepository = (*CustomerRepository)(nil)
