// Package reconcile turns provider callbacks into stored transaction state.
//
// Callbacks may be redelivered, arrive before the initiating request was
// saved, or omit optional metadata. Each handler correlates the payload by
// its provider id and applies it at most once.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mpesagw/internal/models"
	"mpesagw/internal/repositories"
	"mpesagw/internal/services/mpesa"
	"mpesagw/internal/services/notification"
	"mpesagw/internal/utils/phone"

	"go.uber.org/zap"
)

// receiverSeparator splits ReceiverPartyPublicName, e.g. "254708374149 - John Doe".
const receiverSeparator = " - "

type service struct {
	stk         STKRepository
	b2c         B2CRepository
	c2b         C2BRepository
	publisher   notification.Publisher
	countryCode string
	log         *zap.Logger
	now         func() time.Time
}

// NewService creates a new reconciliation service
func NewService(
	stk STKRepository,
	b2c B2CRepository,
	c2b C2BRepository,
	publisher notification.Publisher,
	countryCode string,
	log *zap.Logger,
) Service {
	if stk == nil || b2c == nil || c2b == nil {
		panic("repositories are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if publisher == nil {
		publisher = notification.NewLogPublisher(log)
	}
	if countryCode == "" {
		countryCode = phone.DefaultCountryCode
	}

	return &service{
		stk:         stk,
		b2c:         b2c,
		c2b:         c2b,
		publisher:   publisher,
		countryCode: countryCode,
		log:         log,
		now:         time.Now,
	}
}

func (s *service) HandleSTKCallback(ctx context.Context, payload []byte) (*Outcome, error) {
	var cb mpesa.STKCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", mpesa.ErrMalformedCallback, err)
	}

	res := cb.Body.StkCallback
	if res.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: %w", mpesa.ErrMalformedCallback, ErrMissingReference)
	}

	code := int(res.ResultCode)
	outcome := &Outcome{Reference: res.CheckoutRequestID, ResultCode: code, ResultDesc: res.ResultDesc}
	log := s.log.With(zap.String("checkout_request_id", res.CheckoutRequestID), zap.Int("result_code", code))

	payment := &models.STKPayment{
		MerchantRequestID: res.MerchantRequestID,
		CheckoutRequestID: res.CheckoutRequestID,
		ResultCode:        &code,
		ResultDesc:        res.ResultDesc,
		Callback:          models.NewJSON(payload),
	}

	if code != 0 {
		log.Error("stk callback failed", zap.String("result_desc", res.ResultDesc))
		payment.Status = models.STKStatusFailed
	} else {
		params := res.CallbackMetadata.Item.Params()
		payment.Status = models.STKStatusCompleted
		payment.Amount = params.Float("Amount")
		payment.TransactionID = params.String("MpesaReceiptNumber")
		payment.TransactionDate = params.Time("TransactionDate", mpesa.LayoutCompact)
		if msisdn := params.String("PhoneNumber"); msisdn != nil {
			normalized := phone.Normalize(*msisdn, s.countryCode)
			payment.MSISDN = &normalized
		}
	}

	settled, err := s.stk.Settle(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if !settled {
		existing, err := s.stk.FindByCheckoutRequestID(ctx, res.CheckoutRequestID)
		switch {
		case err == nil:
			log.Info("stk callback already applied", zap.String("status", existing.Status))
			outcome.Status = StatusDuplicate
			return outcome, nil
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}

		if code != 0 {
			// nothing was initiated here, so there is nothing to fail
			log.Warn("stk failure for unknown checkout request")
			outcome.Status = StatusFailed
			s.publish(ctx, notification.EventSTKFailed, outcome, nil)
			return outcome, nil
		}

		// the callback beat the initiating request's insert
		created, err := s.stk.CreateIfAbsent(ctx, payment)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !created {
			outcome.Status = StatusDuplicate
			return outcome, nil
		}
		log.Warn("stk callback recorded without a pending payment")
	}

	if code != 0 {
		outcome.Status = StatusFailed
		s.publish(ctx, notification.EventSTKFailed, outcome, nil)
		return outcome, nil
	}

	log.Info("stk payment completed", zap.Stringp("receipt", payment.TransactionID))
	outcome.Status = StatusRecorded
	s.publish(ctx, notification.EventSTKCompleted, outcome, map[string]interface{}{
		"merchant_request_id": payment.MerchantRequestID,
		"amount":              payment.Amount,
		"receipt":             payment.TransactionID,
		"msisdn":              payment.MSISDN,
	})
	return outcome, nil
}

func (s *service) HandleB2CResult(ctx context.Context, payload []byte) (*Outcome, error) {
	var env mpesa.B2CResultEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", mpesa.ErrMalformedCallback, err)
	}

	res := env.Result
	if res.ConversationID == "" {
		return nil, fmt.Errorf("%w: %w", mpesa.ErrMalformedCallback, ErrMissingReference)
	}

	code := int(res.ResultCode)
	outcome := &Outcome{Reference: res.ConversationID, ResultCode: code, ResultDesc: res.ResultDesc}
	log := s.log.With(
		zap.String("conversation_id", res.ConversationID),
		zap.String("originator_conversation_id", res.OriginatorConversationID),
		zap.Int("result_code", code))

	if code != 0 {
		log.Error("b2c payment failed", zap.String("result_desc", res.ResultDesc))
		outcome.Status = StatusFailed
		s.publish(ctx, notification.EventB2CFailed, outcome, map[string]interface{}{
			"originator_conversation_id": res.OriginatorConversationID,
		})
		return outcome, nil
	}

	params := res.ResultParameters.Params()
	tx := &models.B2CTransaction{
		ConversationID:           res.ConversationID,
		OriginatorConversationID: res.OriginatorConversationID,
		TransactionID:            res.TransactionID,
		ResultCode:               code,
		ResultDesc:               res.ResultDesc,
		Amount:                   params.Float("TransactionAmount"),
		TransactionDate:          params.Time("TransactionCompletedDateTime", mpesa.LayoutDotted, mpesa.LayoutCompact),
	}
	if receipt := params.String("TransactionReceipt"); receipt != nil && *receipt != "" {
		tx.TransactionID = *receipt
	}
	if receiver := params.String("ReceiverPartyPublicName"); receiver != nil {
		tx.ReceiverPhone, tx.ReceiverName = s.splitReceiver(*receiver)
	}

	created, err := s.b2c.CreateIfAbsent(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !created {
		log.Info("b2c result already recorded")
		outcome.Status = StatusDuplicate
		return outcome, nil
	}

	log.Info("b2c payment recorded", zap.String("transaction_id", tx.TransactionID))
	outcome.Status = StatusRecorded
	s.publish(ctx, notification.EventB2CCompleted, outcome, map[string]interface{}{
		"transaction_id": tx.TransactionID,
		"amount":         tx.Amount,
		"receiver_phone": tx.ReceiverPhone,
	})
	return outcome, nil
}

func (s *service) HandleB2CTimeout(ctx context.Context, payload []byte) (*Outcome, error) {
	var env mpesa.B2CResultEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", mpesa.ErrMalformedCallback, err)
	}

	res := env.Result
	outcome := &Outcome{
		Status:     StatusTimedOut,
		Reference:  res.ConversationID,
		ResultCode: int(res.ResultCode),
		ResultDesc: res.ResultDesc,
	}
	if outcome.Reference == "" {
		outcome.Reference = res.OriginatorConversationID
	}

	s.log.Warn("b2c request timed out in provider queue",
		zap.String("conversation_id", res.ConversationID),
		zap.String("originator_conversation_id", res.OriginatorConversationID),
		zap.ByteString("payload", payload))

	s.publish(ctx, notification.EventB2CTimeout, outcome, nil)
	return outcome, nil
}

func (s *service) HandleC2BConfirmation(ctx context.Context, payload []byte) (*Outcome, error) {
	var c mpesa.C2BConfirmation
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", mpesa.ErrMalformedCallback, err)
	}
	if c.TransID == "" {
		return nil, fmt.Errorf("%w: %w", mpesa.ErrMalformedCallback, ErrMissingReference)
	}

	record := &models.C2BConfirmation{
		TransactionType:   c.TransactionType,
		TransactionID:     c.TransID,
		TransactionTime:   mpesa.ParseTime(c.TransTime, mpesa.LayoutCompact),
		BusinessShortcode: c.BusinessShortCode,
		BillRefNo:         c.BillRefNumber,
		InvoiceNumber:     c.InvoiceNumber,
		OrgAccountBalance: c.OrgAccountBalance,
		ThirdPartyTransID: c.ThirdPartyTransID,
		MobileNumber:      c.MSISDN,
		FirstName:         c.FirstName,
		MiddleName:        c.MiddleName,
		LastName:          c.LastName,
	}
	if amount := mpesa.RawFloat(c.TransAmount); amount != nil {
		record.TransactionAmount = *amount
	}
	// newer Daraja versions send a hashed msisdn, which must be kept as is
	if phone.IsNumeric(c.MSISDN) {
		record.MobileNumber = phone.Normalize(c.MSISDN, s.countryCode)
	}

	outcome := &Outcome{Reference: c.TransID}
	log := s.log.With(zap.String("trans_id", c.TransID), zap.String("shortcode", c.BusinessShortCode))

	created, err := s.c2b.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !created {
		log.Info("c2b confirmation already recorded")
		outcome.Status = StatusDuplicate
		return outcome, nil
	}

	log.Info("c2b confirmation recorded", zap.Float64("amount", record.TransactionAmount))
	outcome.Status = StatusRecorded
	s.publish(ctx, notification.EventC2BConfirmation, outcome, map[string]interface{}{
		"shortcode":     record.BusinessShortcode,
		"bill_ref":      record.BillRefNo,
		"amount":        record.TransactionAmount,
		"mobile_number": record.MobileNumber,
	})
	return outcome, nil
}

// splitReceiver separates "<msisdn> - <name>". A value without the
// separator is taken as a name.
func (s *service) splitReceiver(value string) (msisdn, name *string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	left, right, found := strings.Cut(value, receiverSeparator)
	if !found {
		if phone.IsNumeric(value) {
			p := phone.Normalize(value, s.countryCode)
			return &p, nil
		}
		return nil, &value
	}

	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if left != "" {
		p := phone.Normalize(left, s.countryCode)
		msisdn = &p
	}
	if right != "" {
		name = &right
	}
	return msisdn, name
}

func (s *service) publish(ctx context.Context, eventType string, outcome *Outcome, data map[string]interface{}) {
	event := notification.Event{
		Type:       eventType,
		Reference:  outcome.Reference,
		ResultCode: outcome.ResultCode,
		ResultDesc: outcome.ResultDesc,
		Data:       data,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("failed to publish payment event",
			zap.String("type", eventType),
			zap.String("reference", outcome.Reference),
			zap.Error(err))
	}
}
