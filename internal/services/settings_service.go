package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/cleanpress/api/internal/domain"
	"github.com/cleanpress/api/internal/repositories"
)

// SettingsServiceDeps bundles collaborators required to construct the settings service.
type SettingsServiceDeps struct {
	Settings repositories.SettingsRepository

	// Defaults seed the settings document on first read.
	DefaultStoreName  string
	DefaultTaxRatePct decimal.Decimal
	DefaultCurrency   string

	Clock  func() time.Time
	Logger func(ctx context.Context, event string, fields map[string]any)
}

type settingsService struct {
	settings repositories.SettingsRepository
	defaults domain.Settings
	clock    func() time.Time
	logger   func(context.Context, string, map[string]any)
}

// NewSettingsService wires dependencies into a concrete SettingsService implementation.
func NewSettingsService(deps SettingsServiceDeps) (SettingsService, error) {
	if deps.Settings == nil {
		return nil, errors.New("settings service: settings repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	storeName := strings.TrimSpace(deps.DefaultStoreName)
	if storeName == "" {
		storeName = "CleanPress"
	}
	currency := strings.TrimSpace(deps.DefaultCurrency)
	if currency == "" {
		currency = "usd"
	}

	return &settingsService{
		settings: deps.Settings,
		defaults: domain.Settings{
			StoreName:  storeName,
			TaxRatePct: deps.DefaultTaxRatePct,
			Currency:   currency,
		},
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

// GetSettings returns the store settings, seeding the document with the
// configured defaults on first access.
func (s *settingsService) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !isRepoNotFound(err) {
		return domain.Settings{}, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}

	seeded := s.defaults
	seeded.UpdatedAt = s.clock()
	stored, err := s.settings.Update(ctx, seeded)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}
	s.logger(ctx, "settings.seeded", map[string]any{"storeName": stored.StoreName})
	return stored, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, cmd UpdateSettingsCommand) (domain.Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if cmd.StoreName != nil {
		name := strings.TrimSpace(*cmd.StoreName)
		if name == "" {
			return domain.Settings{}, fmt.Errorf("%w: store name must not be empty", ErrInvalidInput)
		}
		current.StoreName = name
	}
	if cmd.TaxRatePct != nil {
		if cmd.TaxRatePct.IsNegative() || cmd.TaxRatePct.GreaterThan(oneHundred) {
			return domain.Settings{}, fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidInput)
		}
		current.TaxRatePct = *cmd.TaxRatePct
	}
	if cmd.Currency != nil {
		currency := strings.TrimSpace(*cmd.Currency)
		if currency == "" {
			return domain.Settings{}, fmt.Errorf("%w: currency must not be empty", ErrInvalidInput)
		}
		current.Currency = strings.ToLower(currency)
	}

	current.UpdatedAt = s.clock()
	stored, err := s.settings.Update(ctx, current)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", ErrSettingsUnavailable, err)
	}
	return stored, nil
}
