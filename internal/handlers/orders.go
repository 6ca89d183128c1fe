package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/platform/httpx"
	"github.com/cleanpress/api/internal/repositories"
	"github.com/cleanpress/api/internal/services"
)

// OrderHandlers serves checkout and order lifecycle endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs the order handlers.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes registers the order endpoints on the router group.
func (h *OrderHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/clear", h.clear)
	r.Get("/{orderId}", h.get)
	r.Patch("/{orderId}/status", h.updateStatus)
	r.Patch("/{orderId}/payment-status", h.updatePaymentStatus)
	r.Patch("/{orderId}/delivery-status", h.updateDeliveryStatus)
}

type checkoutItemRequest struct {
	ProductID   string          `json:"product_id"`
	Service     string          `json:"service"`
	Quantity    int             `json:"quantity"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
}

type checkoutRequest struct {
	CustomerID    string                `json:"customer_id"`
	Items         []checkoutItemRequest `json:"items"`
	PaymentMethod string                `json:"payment_method"`
	CardToken     string                `json:"card_token"`
	Notes         string                `json:"notes"`
}

type orderLinePayload struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Barcode        string          `json:"barcode,omitempty"`
	Service        string          `json:"service"`
	Quantity       int             `json:"quantity"`
	Rate           decimal.Decimal `json:"rate"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type orderPayload struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name"`
	Items          []orderLinePayload `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	TaxRatePct     decimal.Decimal    `json:"tax_rate_pct"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	PaymentRef     string             `json:"payment_ref,omitempty"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"payment_status,omitempty"`
	DeliveryStatus string             `json:"delivery_status,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      string             `json:"created_at,omitempty"`
	UpdatedAt      string             `json:"updated_at,omitempty"`
}

func (h *OrderHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if len(req.Items) == 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "items array is required", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "payment_method is required", http.StatusBadRequest))
		return
	}

	cmd := services.CheckoutCommand{
		CustomerID:    req.CustomerID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		CardToken:     req.CardToken,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		cmd.Lines = append(cmd.Lines, services.CheckoutLine{
			ProductID:   item.ProductID,
			Service:     domain.ServiceVariant(item.Service),
			Quantity:    item.Quantity,
			DiscountPct: item.DiscountPct,
		})
	}

	order, err := h.orders.Checkout(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildOrderPayload(order))
}

func (h *OrderHandlers) list(w http.ResponseWriter, r *http.Request) {
	filter := repositories.OrderListFilter{
		CustomerID: strings.TrimSpace(r.URL.Query().Get("customer_id")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			status = strings.TrimSpace(status)
			if status != "" {
				filter.Status = append(filter.Status, domain.OrderStatus(status))
			}
		}
	}

	orders, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *OrderHandlers) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "status is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), domain.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.PaymentStatus) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "payment_status is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "orderId"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) updateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryStatus string `json:"delivery_status"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.DeliveryStatus) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "delivery_status is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateDeliveryStatus(r.Context(), chi.URLParam(r, "orderId"), domain.DeliveryStatus(req.DeliveryStatus))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(order))
}

func (h *OrderHandlers) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ClearOrders(r.Context()); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cleared": true})
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderLinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, orderLinePayload{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			Service:        string(line.Service),
			Quantity:       line.Quantity,
			Rate:           line.Rate,
			DiscountPct:    line.DiscountPct,
			Subtotal:       domain.RoundMoney(line.Subtotal),
			DiscountAmount: domain.RoundMoney(line.DiscountAmount),
		})
	}

	return orderPayload{
		ID:             order.ID,
		CustomerID:     order.CustomerID,
		CustomerName:   order.CustomerName,
		Items:          items,
		Subtotal:       domain.RoundMoney(order.Subtotal),
		Discount:       domain.RoundMoney(order.Discount),
		TaxRatePct:     order.TaxRatePct,
		Tax:            order.Tax,
		Total:          order.Total,
		PaymentMethod:  string(order.PaymentMethod),
		PaymentRef:     order.PaymentRef,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		DeliveryStatus: string(order.DeliveryStatus),
		Notes:          order.Notes,
		CreatedAt:      formatTime(order.CreatedAt),
		UpdatedAt:      formatTime(order.UpdatedAt),
	}
}
