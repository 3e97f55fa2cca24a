package models

import "time"

// STK payment statuses
const (
	STKStatusPending   = "pending"
	STKStatusCompleted = "completed"
	STKStatusFailed    = "failed"
)

// STKPayment tracks one Lipa Na M-Pesa Online attempt from initiation to callback.
type STKPayment struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	MerchantRequestID string     `gorm:"index" json:"merchant_request_id"`
	CheckoutRequestID string     `gorm:"uniqueIndex;not null" json:"checkout_request_id"`
	BusinessShortcode string     `gorm:"index" json:"business_shortcode"`
	AccountReference  string     `gorm:"index" json:"account_reference"`
	UserID            string     `json:"user_id"`
	Amount            *float64   `json:"amount"`
	MSISDN            *string    `json:"msisdn"`
	TransactionID     *string    `json:"transaction_id"` // MpesaReceiptNumber
	TransactionDate   *time.Time `json:"transaction_date"`
	Status            string     `gorm:"not null;default:'pending'" json:"status"`
	ResultCode        *int       `json:"result_code"`
	ResultDesc        string     `json:"result_desc"`
	Callback          JSON       `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Settled reports whether a callback has already been applied.
func (p *STKPayment) Settled() bool {
	return p.Status == STKStatusCompleted || p.Status == STKStatusFailed
}
