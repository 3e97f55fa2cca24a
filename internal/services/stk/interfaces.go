package stk

import (
	"context"

	"mpesagw/internal/models"
)

// Service initiates Lipa Na M-Pesa Online prompts.
type Service interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
}

// Repository stores initiated payments.
type Repository interface {
	Create(ctx context.Context, p *models.STKPayment) error
}
