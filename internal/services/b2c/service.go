// Package b2c sends business payments to customer wallets. Results arrive
// asynchronously on the configured result and timeout URLs.
package b2c

import (
	"context"
	"fmt"

	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/utils/phone"
	"mpesagw/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type service struct {
	provider mpesa.Provider
	config   Config
	log      *zap.Logger
	newID    func() string
}

// NewService creates a new B2C payout service
func NewService(provider mpesa.Provider, config Config, log *zap.Logger) Service {
	if provider == nil {
		panic("provider is required")
	}
	if config.CountryCode == "" {
		config.CountryCode = phone.DefaultCountryCode
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &service{
		provider: provider,
		config:   config,
		log:      log,
		newID:    uuid.NewString,
	}
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (*mpesa.B2CResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	partyB := phone.Normalize(req.PartyB, s.config.CountryCode)
	if len(partyB) != msisdnLength {
		return nil, validation.Errors{
			"party_b": fmt.Sprintf("must be %d digits including the country code", msisdnLength),
		}
	}

	if s.config.Shortcode == "" || s.config.InitiatorName == "" {
		return nil, ErrNotConfigured
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = defaultRemarks
	}

	payment := mpesa.B2CRequest{
		OriginatorConversationID: s.newID(),
		InitiatorName:            s.config.InitiatorName,
		SecurityCredential:       s.config.SecurityCredential,
		CommandID:                mpesa.CommandBusinessPayment,
		Amount:                   req.Amount,
		PartyA:                   s.config.Shortcode,
		PartyB:                   partyB,
		Remarks:                  remarks,
		QueueTimeOutURL:          s.config.TimeoutURL,
		ResultURL:                s.config.ResultURL,
		Occasion:                 req.Occasion,
	}

	resp, err := s.provider.B2CPayment(ctx, s.config.Credentials, payment)
	if err != nil {
		s.log.Error("b2c payment request failed",
			zap.String("originator_conversation_id", payment.OriginatorConversationID),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("b2c payment request accepted",
		zap.String("originator_conversation_id", payment.OriginatorConversationID),
		zap.String("conversation_id", resp.ConversationID),
		zap.String("user_id", req.UserID))

	return resp, nil
}
