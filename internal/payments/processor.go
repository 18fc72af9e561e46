// Package payments creates payment intents with an external card processor.
package payments

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mock_processor.go -package=payments farmdirect/internal/payments Processor

var (
	ErrNotConfigured = errors.New("payments not configured")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// IntentRequest asks for a charge of Amount minor currency units.
type IntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type Processor interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// Disabled is the processor used when no API key is configured.
type Disabled struct{}

func (Disabled) CreatePaymentIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, ErrNotConfigured
}
