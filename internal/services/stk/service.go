// Package stk raises STK push prompts and records the pending attempt so the
// later callback can be correlated by checkout request id.
package stk

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"mpesagw/internal/models"
	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/utils/phone"
	"mpesagw/internal/validation"

	"go.uber.org/zap"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type service struct {
	provider mpesa.Provider
	repo     Repository
	config   Config
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new STK push service
func NewService(provider mpesa.Provider, repo Repository, config Config, log *zap.Logger) Service {
	if provider == nil {
		panic("provider is required")
	}
	if repo == nil {
		panic("repo is required")
	}
	if config.CountryCode == "" {
		config.CountryCode = phone.DefaultCountryCode
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &service{
		provider: provider,
		repo:     repo,
		config:   config,
		log:      log,
		now:      time.Now,
	}
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if s.config.Shortcode == "" || s.config.Passkey == "" {
		return nil, ErrNotConfigured
	}

	reference, err := accountReference()
	if err != nil {
		return nil, fmt.Errorf("generate account reference: %w", err)
	}

	msisdn := phone.Normalize(req.MSISDN, s.config.CountryCode)
	// Daraja only takes whole shillings
	amount := math.Round(req.Amount)
	timestamp := mpesa.Timestamp(s.now())

	resp, err := s.provider.STKPush(ctx, s.config.Credentials, mpesa.STKPushRequest{
		BusinessShortCode: s.config.Shortcode,
		Password:          mpesa.STKPassword(s.config.Shortcode, s.config.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   mpesa.TransactionTypePayBillOnline,
		Amount:            int64(amount),
		PartyA:            msisdn,
		PartyB:            s.config.Shortcode,
		PhoneNumber:       msisdn,
		CallBackURL:       s.config.CallbackURL,
		AccountReference:  reference,
		TransactionDesc:   "Payment for " + reference,
	})
	if err != nil {
		s.log.Error("stk push failed", zap.String("account_reference", reference), zap.Error(err))
		return nil, err
	}

	if !resp.Accepted() {
		s.log.Error("stk push not accepted",
			zap.String("response_code", resp.ResponseCode),
			zap.String("response_description", resp.ResponseDescription))
		return &InitiateResult{Response: resp, AccountReference: reference},
			fmt.Errorf("%w: %s", ErrRejected, resp.ResponseDescription)
	}

	s.log.Info("stk push accepted",
		zap.String("checkout_request_id", resp.CheckoutRequestID),
		zap.String("account_reference", reference))

	payment := &models.STKPayment{
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		BusinessShortcode: s.config.Shortcode,
		AccountReference:  reference,
		UserID:            req.UserID,
		Amount:            &amount,
		MSISDN:            &msisdn,
		Status:            models.STKStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		s.log.Error("failed to save stk payment",
			zap.String("checkout_request_id", resp.CheckoutRequestID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSavePayment, err)
	}

	return &InitiateResult{Response: resp, AccountReference: reference}, nil
}

func accountReference() (string, error) {
	size := big.NewInt(int64(len(referenceAlphabet)))
	b := make([]byte, accountReferenceLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b[i] = referenceAlphabet[n.Int64()]
	}
	return string(b), nil
}
