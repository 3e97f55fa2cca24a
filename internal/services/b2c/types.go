package b2c

import "mpesagw/internal/services/mpesa"

const (
	msisdnLength   = 12
	defaultRemarks = "Payment"
)

// InitiateRequest is the merchant-supplied part of a payout.
type InitiateRequest struct {
	Amount   float64 `json:"amount" validate:"required,gte=1"`
	PartyB   string  `json:"party_b" validate:"required,digits"`
	Remarks  string  `json:"remarks"`
	Occasion string  `json:"occasion"`
	UserID   string  `json:"userId"`
}

// Config is the disbursement account and its result endpoints.
type Config struct {
	Credentials        mpesa.Credentials
	Shortcode          string
	InitiatorName      string
	SecurityCredential string
	ResultURL          string
	TimeoutURL         string
	CountryCode        string
}
