package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/platform/httpx"
	"github.com/cleanpress/api/internal/services"
)

// CustomerHandlers serves the customer book endpoints.
type CustomerHandlers struct {
	customers services.CustomerService
}

// NewCustomerHandlers constructs the customer handlers.
func NewCustomerHandlers(customers services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customers: customers}
}

// Routes registers the customer endpoints on the router group.
func (h *CustomerHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{customerId}", h.get)
	r.Put("/{customerId}", h.update)
	r.Delete("/{customerId}", h.delete)
}

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type customerPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (h *CustomerHandlers) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		payload = append(payload, buildCustomerPayload(customer))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CustomerHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "name is required", http.StatusBadRequest))
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), services.UpsertCustomerCommand(req))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.GetCustomer(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	customer, err := h.customers.UpdateCustomer(r.Context(), chi.URLParam(r, "customerId"), services.UpsertCustomerCommand(req))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCustomerPayload(customer))
}

func (h *CustomerHandlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.DeleteCustomer(r.Context(), chi.URLParam(r, "customerId")); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func buildCustomerPayload(customer domain.Customer) customerPayload {
	return customerPayload{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		CreatedAt: formatTime(customer.CreatedAt),
		UpdatedAt: formatTime(customer.UpdatedAt),
	}
}
