package fetch

import (
	"context"

	"mpesagw/internal/models"
)

// Service reads recorded transactions for the merchant application.
type Service interface {
	STKPayments(ctx context.Context, shortcode string) ([]models.STKPayment, error)
	C2BPayments(ctx context.Context, shortcode string) ([]models.C2BSummary, error)
	CustomerTransactions(ctx context.Context, billRef string) ([]models.C2BConfirmation, error)
	AllTransactions(ctx context.Context) ([]models.C2BConfirmation, error)
	ConfirmSTKPayment(ctx context.Context, accountReference string) (*models.STKPayment, error)
	B2CTransaction(ctx context.Context, conversationID string) (*models.B2CTransaction, error)
}

type STKReader interface {
	FindByShortcode(ctx context.Context, shortcode string) ([]models.STKPayment, error)
	FindByAccountReference(ctx context.Context, accountReference string) (*models.STKPayment, error)
}

type C2BReader interface {
	FindAfterID(ctx context.Context, shortcode string, lastID uint) ([]models.C2BSummary, error)
	FindByBillRef(ctx context.Context, billRef string) ([]models.C2BConfirmation, error)
	FindAll(ctx context.Context) ([]models.C2BConfirmation, error)
}

type B2CReader interface {
	FindByConversationID(ctx context.Context, conversationID string) (*models.B2CTransaction, error)
}

// CursorStore remembers the last record id handed out per consumer.
// ClaimCursor is a compare-and-set from one id to another.
type CursorStore interface {
	GetCursor(ctx context.Context, name string) (uint, error)
	ClaimCursor(ctx context.Context, name string, from, to uint) (bool, error)
}
