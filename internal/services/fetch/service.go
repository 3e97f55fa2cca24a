// Package fetch serves recorded transactions. C2B confirmations are handed
// out incrementally: each call returns only records newer than the previous
// call for the same shortcode, and concurrent callers never get the same
// record.
package fetch

import (
	"context"
	"errors"
	"fmt"

	apperrors "mpesagw/internal/errors"
	"mpesagw/internal/models"
	"mpesagw/internal/repositories"
	"mpesagw/internal/utils/phone"
	"mpesagw/internal/validation"

	"go.uber.org/zap"
)

// claimAttempts bounds how often C2BPayments re-reads a cursor that another
// caller moved.
const claimAttempts = 3

type service struct {
	stk     STKReader
	c2b     C2BReader
	b2c     B2CReader
	cursors CursorStore
	log     *zap.Logger
}

// NewService creates a new fetch service
func NewService(stk STKReader, c2b C2BReader, b2c B2CReader, cursors CursorStore, log *zap.Logger) Service {
	if stk == nil || c2b == nil || b2c == nil {
		panic("repositories are required")
	}
	if cursors == nil {
		panic("cursor store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{stk: stk, c2b: c2b, b2c: b2c, cursors: cursors, log: log}
}

func (s *service) STKPayments(ctx context.Context, shortcode string) ([]models.STKPayment, error) {
	if err := validShortcode(shortcode); err != nil {
		return nil, err
	}

	payments, err := s.stk.FindByShortcode(ctx, shortcode)
	if err != nil {
		return nil, fmt.Errorf("fetch stk payments: %w", err)
	}
	s.log.Info("stk payments fetched", zap.String("shortcode", shortcode), zap.Int("count", len(payments)))
	return payments, nil
}

func (s *service) C2BPayments(ctx context.Context, shortcode string) ([]models.C2BSummary, error) {
	if err := validShortcode(shortcode); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= claimAttempts; attempt++ {
		lastID, err := s.cursors.GetCursor(ctx, shortcode)
		if err != nil {
			return nil, fmt.Errorf("read c2b cursor: %w", err)
		}

		records, err := s.c2b.FindAfterID(ctx, shortcode, lastID)
		if err != nil {
			return nil, fmt.Errorf("fetch c2b payments: %w", err)
		}
		if len(records) == 0 {
			s.log.Info("no new c2b payments", zap.String("shortcode", shortcode), zap.Uint("cursor", lastID))
			return records, nil
		}

		var maxID uint
		for _, r := range records {
			if r.ID > maxID {
				maxID = r.ID
			}
		}

		claimed, err := s.cursors.ClaimCursor(ctx, shortcode, lastID, maxID)
		if err != nil {
			return nil, fmt.Errorf("claim c2b cursor: %w", err)
		}
		if !claimed {
			s.log.Info("c2b cursor moved by another caller",
				zap.String("shortcode", shortcode),
				zap.Uint("cursor", lastID),
				zap.Int("attempt", attempt))
			continue
		}

		s.log.Info("c2b payments fetched",
			zap.String("shortcode", shortcode),
			zap.Int("count", len(records)),
			zap.Uint("cursor", maxID))
		return records, nil
	}

	s.log.Warn("c2b cursor contended, returning no records", zap.String("shortcode", shortcode))
	return []models.C2BSummary{}, nil
}

func (s *service) CustomerTransactions(ctx context.Context, billRef string) ([]models.C2BConfirmation, error) {
	if billRef == "" {
		return nil, validation.Errors{"billref_no": "is required"}
	}

	records, err := s.c2b.FindByBillRef(ctx, billRef)
	if err != nil {
		return nil, fmt.Errorf("fetch customer transactions: %w", err)
	}
	return records, nil
}

func (s *service) AllTransactions(ctx context.Context) ([]models.C2BConfirmation, error) {
	records, err := s.c2b.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return records, nil
}

func (s *service) ConfirmSTKPayment(ctx context.Context, accountReference string) (*models.STKPayment, error) {
	if accountReference == "" {
		return nil, validation.Errors{"account_reference": "is required"}
	}

	payment, err := s.stk.FindByAccountReference(ctx, accountReference)
	if err != nil {
		return nil, notFound(err, "fetch stk payment")
	}
	return payment, nil
}

func (s *service) B2CTransaction(ctx context.Context, conversationID string) (*models.B2CTransaction, error) {
	if conversationID == "" {
		return nil, validation.Errors{"conversation_id": "is required"}
	}

	tx, err := s.b2c.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, "fetch b2c transaction")
	}
	return tx, nil
}

func validShortcode(shortcode string) error {
	if shortcode == "" {
		return validation.Errors{"shortcode": "is required"}
	}
	if !phone.IsNumeric(shortcode) {
		return validation.Errors{"shortcode": "must be numeric"}
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrNotFound.Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
