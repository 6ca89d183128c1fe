package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

const productIDPrefix = "prd_"

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	products repositories.ProductRepository
	clock    func() time.Time
	newID    func() string
	logger   func(context.Context, string, map[string]any)
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
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

	return &catalogService{
		products: deps.Products,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:  idGen,
		logger: logger,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd UpsertProductCommand) (domain.Product, error) {
	product, err := s.buildProduct(cmd)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.checkBarcode(ctx, product.Barcode, ""); err != nil {
		return domain.Product{}, err
	}

	now := s.clock()
	product.ID = productIDPrefix + s.newID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.Insert(ctx, product); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "catalog.product.created", map[string]any{"productId": product.ID})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID string, cmd UpsertProductCommand) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	existing, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}

	product, err := s.buildProduct(cmd)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.checkBarcode(ctx, product.Barcode, productID); err != nil {
		return domain.Product{}, err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = s.clock()

	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "catalog.product.deleted", map[string]any{"productId": productID})
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.Product{}, fmt.Errorf("%w: barcode is required", ErrInvalidInput)
	}
	product, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) buildProduct(cmd UpsertProductCommand) (domain.Product, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	for _, rate := range []struct {
		label string
		value decimal.Decimal
	}{
		{"iron", cmd.IronRate},
		{"washAndIron", cmd.WashAndIronRate},
		{"dryClean", cmd.DryCleanRate},
	} {
		if rate.value.IsNegative() {
			return domain.Product{}, fmt.Errorf("%w: %s rate must not be negative", ErrInvalidInput, rate.label)
		}
	}

	return domain.Product{
		Name:     name,
		Category: strings.TrimSpace(cmd.Category),
		Barcode:  strings.TrimSpace(cmd.Barcode),
		Rates: domain.ServiceRates{
			Iron:        cmd.IronRate,
			WashAndIron: cmd.WashAndIronRate,
			DryClean:    cmd.DryCleanRate,
		},
	}, nil
}

// checkBarcode enforces barcode uniqueness across the catalogue. selfID is
// excluded so updates keeping their own barcode pass.
func (s *catalogService) checkBarcode(ctx context.Context, barcode, selfID string) error {
	if barcode == "" {
		return nil
	}
	existing, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		if isRepoNotFound(err) {
			return nil
		}
		return s.mapRepositoryError(err)
	}
	if existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrBarcodeConflict, barcode)
	}
	return nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrBarcodeConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("catalog: repository unavailable: %w", err)
		}
	}

	return err
}
