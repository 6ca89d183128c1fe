package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/platform/httpx"
	"github.com/cleanpress/api/internal/services"
)

// ProductHandlers serves the rate catalogue endpoints.
type ProductHandlers struct {
	catalog services.CatalogService
}

// NewProductHandlers constructs the catalogue handlers.
func NewProductHandlers(catalog services.CatalogService) *ProductHandlers {
	return &ProductHandlers{catalog: catalog}
}

// Routes registers the catalogue endpoints on the router group.
func (h *ProductHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/barcode/{code}", h.getByBarcode)
	r.Get("/{productId}", h.get)
	r.Put("/{productId}", h.update)
	r.Delete("/{productId}", h.delete)
}

type productRatesPayload struct {
	Iron        decimal.Decimal `json:"iron"`
	WashAndIron decimal.Decimal `json:"washAndIron"`
	DryClean    decimal.Decimal `json:"dryClean"`
}

type productRequest struct {
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Barcode  string              `json:"barcode"`
	Rates    productRatesPayload `json:"rates"`
}

type productPayload struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  string              `json:"category,omitempty"`
	Barcode   string              `json:"barcode,omitempty"`
	Rates     productRatesPayload `json:"rates"`
	CreatedAt string              `json:"createdAt,omitempty"`
	UpdatedAt string              `json:"updatedAt,omitempty"`
}

func (h *ProductHandlers) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ProductHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "name is required", http.StatusBadRequest))
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), upsertProductCommand(req))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildProductPayload(product))
}

func (h *ProductHandlers) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *ProductHandlers) getByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *ProductHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productId"), upsertProductCommand(req))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *ProductHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func upsertProductCommand(req productRequest) services.UpsertProductCommand {
	return services.UpsertProductCommand{
		Name:            req.Name,
		Category:        req.Category,
		Barcode:         req.Barcode,
		IronRate:        req.Rates.Iron,
		WashAndIronRate: req.Rates.WashAndIron,
		DryCleanRate:    req.Rates.DryClean,
	}
}

func buildProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		Barcode:  product.Barcode,
		Rates: productRatesPayload{
			Iron:        product.Rates.Iron,
			WashAndIron: product.Rates.WashAndIron,
			DryClean:    product.Rates.DryClean,
		},
		CreatedAt: formatTime(product.CreatedAt),
		UpdatedAt: formatTime(product.UpdatedAt),
	}
}
