package stk

import (
	"mpesagw/internal/services/mpesa"
)

const accountReferenceLength = 10

// InitiateRequest is the merchant-supplied part of an STK push.
type InitiateRequest struct {
	Amount float64 `json:"amount" validate:"required,gte=1"`
	MSISDN string  `json:"msisdn" validate:"required,digits"`
	UserID string  `json:"userId" validate:"required"`
}

// InitiateResult is the accepted provider response and the account reference
// generated for the attempt.
type InitiateResult struct {
	Response         *mpesa.STKPushResponse
	AccountReference string
}

// Config carries the paybill the prompts are raised against.
type Config struct {
	Credentials mpesa.Credentials
	Shortcode   string
	Passkey     string
	CallbackURL string
	CountryCode string
}
