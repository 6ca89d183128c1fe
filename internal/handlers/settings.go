package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/platform/httpx"
	"github.com/cleanpress/api/internal/services"
)

// SettingsHandlers serves the store settings endpoints.
type SettingsHandlers struct {
	settings services.SettingsService
}

// NewSettingsHandlers constructs the settings handlers.
func NewSettingsHandlers(settings services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settings: settings}
}

// Routes registers the settings endpoints on the router group.
func (h *SettingsHandlers) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
}

type settingsRequest struct {
	StoreName  *string          `json:"store_name"`
	TaxRatePct *decimal.Decimal `json:"tax_rate_pct"`
	Currency   *string          `json:"currency"`
}

type settingsPayload struct {
	StoreName  string          `json:"store_name"`
	TaxRatePct decimal.Decimal `json:"tax_rate_pct"`
	Currency   string          `json:"currency"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

func (h *SettingsHandlers) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSettingsPayload(settings))
}

func (h *SettingsHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	if req.StoreName == nil && req.TaxRatePct == nil && req.Currency == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "no editable fields provided", http.StatusBadRequest))
		return
	}

	settings, err := h.settings.UpdateSettings(r.Context(), services.UpdateSettingsCommand{
		StoreName:  req.StoreName,
		TaxRatePct: req.TaxRatePct,
		Currency:   req.Currency,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSettingsPayload(settings))
}

func buildSettingsPayload(settings domain.Settings) settingsPayload {
	return settingsPayload{
		StoreName:  settings.StoreName,
		TaxRatePct: settings.TaxRatePct,
		Currency:   settings.Currency,
		UpdatedAt:  formatTime(settings.UpdatedAt),
	}
}
