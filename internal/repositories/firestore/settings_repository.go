package firestore

import (
	"context"
	"errors"
	"time"

	domain "github.com/cleanpress/api/internal/domain"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

const (
	settingsCollection = "settings"
	settingsDocumentID = "store"
)

type settingsDocument struct {
	StoreName  string    `firestore:"storeName"`
	TaxRatePct string    `firestore:"taxRatePct"`
	Currency   string    `firestore:"currency"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

// SettingsRepository stores the single store-wide settings document.
type SettingsRepository struct {
	base *pfirestore.BaseRepository[settingsDocument]
}

// NewSettingsRepository constructs a Firestore-backed settings repository.
func NewSettingsRepository(provider *pfirestore.Provider) (*SettingsRepository, error) {
	if provider == nil {
		return nil, errors.New("settings repository requires firestore provider")
	}
	return &SettingsRepository{
		base: pfirestore.NewBaseRepository[settingsDocument](provider, settingsCollection, nil),
	}, nil
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	doc, err := r.base.Get(ctx, settingsDocumentID)
	if err != nil {
		return domain.Settings{}, err
	}

	taxRate, err := parseMoney("taxRatePct", doc.Data.TaxRatePct)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.Settings{
		StoreName:  doc.Data.StoreName,
		TaxRatePct: taxRate,
		Currency:   doc.Data.Currency,
		UpdatedAt:  doc.Data.UpdatedAt,
	}, nil
}

func (r *SettingsRepository) Update(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	err := r.base.Set(ctx, settingsDocumentID, settingsDocument{
		StoreName:  settings.StoreName,
		TaxRatePct: moneyString(settings.TaxRatePct),
		Currency:   settings.Currency,
		UpdatedAt:  settings.UpdatedAt,
	})
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

var _ repositories.SettingsRepository = (*SettingsRepository)(nil)
