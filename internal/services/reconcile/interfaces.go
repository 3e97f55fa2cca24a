package reconcile

import (
	"context"

	"mpesagw/internal/models"
)

// Service applies asynchronous provider callbacks to stored transactions.
// Every handler is safe to call repeatedly with the same payload.
type Service interface {
	HandleSTKCallback(ctx context.Context, payload []byte) (*Outcome, error)
	HandleB2CResult(ctx context.Context, payload []byte) (*Outcome, error)
	HandleB2CTimeout(ctx context.Context, payload []byte) (*Outcome, error)
	HandleC2BConfirmation(ctx context.Context, payload []byte) (*Outcome, error)
}

type STKRepository interface {
	Settle(ctx context.Context, p *models.STKPayment) (bool, error)
	CreateIfAbsent(ctx context.Context, p *models.STKPayment) (bool, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.STKPayment, error)
}

type B2CRepository interface {
	CreateIfAbsent(ctx context.Context, tx *models.B2CTransaction) (bool, error)
}

type C2BRepository interface {
	CreateIfAbsent(ctx context.Context, c *models.C2BConfirmation) (bool, error)
}
