package models

import "time"

// C2BConfirmation is a customer-initiated paybill/till payment pushed to the
// registered confirmation URL.
type C2BConfirmation struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	TransactionType   string     `json:"transaction_type"`
	TransactionID     string     `gorm:"uniqueIndex;not null" json:"transaction_id"`
	TransactionTime   *time.Time `json:"transaction_time"`
	TransactionAmount float64    `json:"transaction_amount"`
	BusinessShortcode string     `gorm:"index" json:"business_shortcode"`
	BillRefNo         string     `gorm:"column:billref_no;index" json:"billref_no"`
	InvoiceNumber     string     `json:"invoice_number"`
	OrgAccountBalance string     `json:"org_account_balance"`
	ThirdPartyTransID string     `json:"third_party_trans_id"`
	MobileNumber      string     `json:"mobile_number"`
	FirstName         string     `json:"first_name"`
	MiddleName        string     `json:"middle_name"`
	LastName          string     `json:"last_name"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName keeps the table name used by existing deployments.
func (C2BConfirmation) TableName() string {
	return "mpesa_confirmations"
}

// C2BSummary is the projection returned by the incremental C2B fetch.
type C2BSummary struct {
	ID                uint    `json:"id"`
	TransactionType   string  `json:"transaction_type"`
	TransactionID     string  `json:"transaction_id"`
	TransactionAmount float64 `json:"transaction_amount"`
	BusinessShortcode string  `json:"business_shortcode"`
	MobileNumber      string  `json:"mobile_number"`
	FirstName         string  `json:"first_name"`
}
