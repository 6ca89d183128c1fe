package payments

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the normalised payment states shared across providers.
type Status string

const (
	// StatusSucceeded indicates the charge was captured.
	StatusSucceeded Status = "succeeded"
	// StatusPending indicates the charge is awaiting confirmation.
	StatusPending Status = "pending"
	// StatusFailed indicates the charge failed and no further action is possible.
	StatusFailed Status = "failed"
)

// ErrCardPaymentsDisabled is returned when a card charge is requested but no
// card provider is configured.
var ErrCardPaymentsDisabled = errors.New("payments: card payments are not configured")

// ChargeRequest captures a card-present charge at the till.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	CardToken   string
	Description string
	Metadata    map[string]string
}

// ChargeResult normalises provider specific fields for storage on the order.
type ChargeResult struct {
	Provider  string
	Reference string
	Status    Status
	ChargedAt time.Time
}

// Provider defines the contract for payment adapters.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// NoopProvider satisfies Provider for payment methods settled outside any
// PSP (cash, store credit, split, COD).
type NoopProvider struct{}

// Charge records the payment as settled without contacting a PSP.
func (NoopProvider) Charge(_ context.Context, req ChargeRequest) (ChargeResult, error) {
	return ChargeResult{
		Provider:  "none",
		Status:    StatusSucceeded,
		ChargedAt: time.Now().UTC(),
	}, nil
}

// DisabledProvider rejects every charge; used when card payments are off.
type DisabledProvider struct{}

// Charge always fails with ErrCardPaymentsDisabled.
func (DisabledProvider) Charge(context.Context, ChargeRequest) (ChargeResult, error) {
	return ChargeResult{}, ErrCardPaymentsDisabled
}
