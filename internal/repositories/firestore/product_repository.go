package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/cleanpress/api/internal/domain"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

const productCollection = "products"

type productDocument struct {
	Name            string    `firestore:"name"`
	Category        string    `firestore:"category"`
	Barcode         string    `firestore:"barcode"`
	IronRate        string    `firestore:"ironRate"`
	WashAndIronRate string    `firestore:"washAndIronRate"`
	DryCleanRate    string    `firestore:"dryCleanRate"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

// ProductRepository persists the rate catalogue in Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil),
	}, nil
}

func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	return r.base.Set(ctx, product.ID, toProductDocument(product))
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	return r.base.Set(ctx, product.ID, toProductDocument(product))
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.base.Delete(ctx, productID)
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return fromProductDocument(doc.ID, doc.Data)
}

func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("barcode", "==", barcode).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.NewNotFoundError("products.find_by_barcode", errors.New("barcode "+barcode))
	}
	return fromProductDocument(docs[0].ID, docs[0].Data)
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := fromProductDocument(doc.ID, doc.Data)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func toProductDocument(product domain.Product) productDocument {
	return productDocument{
		Name:            product.Name,
		Category:        product.Category,
		Barcode:         product.Barcode,
		IronRate:        moneyString(product.Rates.Iron),
		WashAndIronRate: moneyString(product.Rates.WashAndIron),
		DryCleanRate:    moneyString(product.Rates.DryClean),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}

func fromProductDocument(id string, doc productDocument) (domain.Product, error) {
	iron, err := parseMoney("ironRate", doc.IronRate)
	if err != nil {
		return domain.Product{}, err
	}
	washAndIron, err := parseMoney("washAndIronRate", doc.WashAndIronRate)
	if err != nil {
		return domain.Product{}, err
	}
	dryClean, err := parseMoney("dryCleanRate", doc.DryCleanRate)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:       id,
		Name:     doc.Name,
		Category: doc.Category,
		Barcode:  doc.Barcode,
		Rates: domain.ServiceRates{
			Iron:        iron,
			WashAndIron: washAndIron,
			DryClean:    dryClean,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
