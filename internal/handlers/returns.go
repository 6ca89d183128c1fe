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

// ReturnHandlers serves the refund ledger endpoints.
type ReturnHandlers struct {
	returns services.ReturnService
}

// NewReturnHandlers constructs the returns handlers.
func NewReturnHandlers(returns services.ReturnService) *ReturnHandlers {
	return &ReturnHandlers{returns: returns}
}

// Routes registers the returns endpoints on the router group.
func (h *ReturnHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/clear", h.clear)
}

type returnItemRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type returnRequest struct {
	OrderID string              `json:"order_id"`
	Items   []returnItemRequest `json:"items"`
	Reason  string              `json:"reason"`
	// Pointer so an absent aggregate derives from the items while a stated
	// zero still has to reconcile against them.
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

type returnItemPayload struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Barcode      string          `json:"barcode,omitempty"`
	Service      string          `json:"service"`
	Quantity     int             `json:"quantity"`
	Rate         decimal.Decimal `json:"rate"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type returnPayload struct {
	ID           string              `json:"id"`
	OrderID      string              `json:"order_id"`
	Reason       string              `json:"reason,omitempty"`
	RefundAmount decimal.Decimal     `json:"refund_amount"`
	Items        []returnItemPayload `json:"items"`
	CreatedAt    string              `json:"created_at,omitempty"`
}

type returnRecordPayload struct {
	returnPayload
	OrderTotal    decimal.Decimal `json:"order_total"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

func (h *ReturnHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "order_id is required", http.StatusBadRequest))
		return
	}
	if len(req.Items) == 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "items array is required", http.StatusBadRequest))
		return
	}

	cmd := services.ProcessReturnCommand{
		OrderID:      req.OrderID,
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, services.ReturnItemRequest{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			RefundAmount: item.RefundAmount,
		})
	}

	ret, err := h.returns.ProcessReturn(r.Context(), cmd)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildReturnPayload(ret))
}

func (h *ReturnHandlers) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.returns.ListReturns(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	payload := make([]returnRecordPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, returnRecordPayload{
			returnPayload: buildReturnPayload(record.Return),
			OrderTotal:    domain.RoundMoney(record.OrderTotal),
			CustomerName:  record.CustomerName,
			CustomerPhone: record.CustomerPhone,
		})
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *ReturnHandlers) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.returns.ClearReturns(r.Context()); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cleared": true})
}

func buildReturnPayload(ret domain.Return) returnPayload {
	items := make([]returnItemPayload, 0, len(ret.Items))
	for _, item := range ret.Items {
		items = append(items, returnItemPayload{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Barcode:      item.Barcode,
			Service:      string(item.Service),
			Quantity:     item.Quantity,
			Rate:         item.Rate,
			RefundAmount: domain.RoundMoney(item.RefundAmount),
		})
	}
	return returnPayload{
		ID:           ret.ID,
		OrderID:      ret.OrderID,
		Reason:       ret.Reason,
		RefundAmount: domain.RoundMoney(ret.RefundAmount),
		Items:        items,
		CreatedAt:    formatTime(ret.CreatedAt),
	}
}
