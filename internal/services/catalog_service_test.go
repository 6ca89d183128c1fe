package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/cleanpress/api/internal/domain"
)

func newTestCatalog(t *testing.T, products *stubProductRepo) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Products:    products,
		Clock:       fixedClock(),
		IDGenerator: seqIDs(),
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestCreateProductAssignsIDAndTimestamps(t *testing.T) {
	var inserted *domain.Product
	products := &stubProductRepo{
		insertFn: func(_ context.Context, product domain.Product) error {
			inserted = &product
			return nil
		},
	}
	svc := newTestCatalog(t, products)

	product, err := svc.CreateProduct(context.Background(), UpsertProductCommand{
		Name:            "Shirt",
		Category:        "tops",
		Barcode:         "SHIRT-001",
		IronRate:        dec(t, "15.50"),
		WashAndIronRate: dec(t, "25.00"),
		DryCleanRate:    dec(t, "40.00"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if !strings.HasPrefix(product.ID, "prd_") {
		t.Fatalf("product ID %q missing prd_ prefix", product.ID)
	}
	if product.CreatedAt.IsZero() || product.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
	if inserted == nil || !inserted.Rates.Iron.Equal(dec(t, "15.50")) {
		t.Fatalf("persisted product missing rates: %+v", inserted)
	}
}

func TestCreateProductRequiresName(t *testing.T) {
	svc := newTestCatalog(t, &stubProductRepo{})

	_, err := svc.CreateProduct(context.Background(), UpsertProductCommand{Name: "  "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateProductRejectsNegativeRate(t *testing.T) {
	svc := newTestCatalog(t, &stubProductRepo{})

	_, err := svc.CreateProduct(context.Background(), UpsertProductCommand{
		Name:     "Shirt",
		IronRate: dec(t, "-1"),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	products := &stubProductRepo{
		findBarcodeFn: func(_ context.Context, barcode string) (domain.Product, error) {
			return domain.Product{ID: "prd_other", Barcode: barcode}, nil
		},
	}
	svc := newTestCatalog(t, products)

	_, err := svc.CreateProduct(context.Background(), UpsertProductCommand{
		Name:    "Shirt",
		Barcode: "SHIRT-001",
	})
	if !errors.Is(err, ErrBarcodeConflict) {
		t.Fatalf("expected ErrBarcodeConflict, got %v", err)
	}
}

func TestUpdateProductKeepsOwnBarcode(t *testing.T) {
	existing := domain.Product{ID: "prd_1", Name: "Shirt", Barcode: "SHIRT-001"}
	products := &stubProductRepo{
		findFn: func(_ context.Context, id string) (domain.Product, error) {
			if id == existing.ID {
				return existing, nil
			}
			return domain.Product{}, notFoundErr("product " + id)
		},
		findBarcodeFn: func(_ context.Context, barcode string) (domain.Product, error) {
			return existing, nil
		},
	}
	svc := newTestCatalog(t, products)

	product, err := svc.UpdateProduct(context.Background(), "prd_1", UpsertProductCommand{
		Name:    "Dress Shirt",
		Barcode: "SHIRT-001",
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if product.Name != "Dress Shirt" {
		t.Fatalf("Name = %q, want Dress Shirt", product.Name)
	}
	if product.ID != "prd_1" {
		t.Fatalf("ID = %q, want prd_1", product.ID)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := newTestCatalog(t, &stubProductRepo{})

	_, err := svc.UpdateProduct(context.Background(), "prd_ghost", UpsertProductCommand{Name: "Shirt"})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetProductByBarcodeRequiresValue(t *testing.T) {
	svc := newTestCatalog(t, &stubProductRepo{})

	_, err := svc.GetProductByBarcode(context.Background(), " ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
