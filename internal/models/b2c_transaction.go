package models

import "time"

// B2CTransaction is a successful business-to-customer payout result.
// ConversationID is the provider's correlation id and the dedup key.
type B2CTransaction struct {
	ID                       uint       `gorm:"primarykey" json:"id"`
	ConversationID           string     `gorm:"uniqueIndex;not null" json:"conversation_id"`
	OriginatorConversationID string     `gorm:"index" json:"originator_conversation_id"`
	TransactionID            string     `json:"transaction_id"`
	ResultCode               int        `json:"result_code"`
	ResultDesc               string     `json:"result_desc"`
	Amount                   *float64   `json:"amount"`
	ReceiverName             *string    `json:"receiver_name"`
	ReceiverPhone            *string    `json:"receiver_phone"`
	TransactionDate          *time.Time `json:"transaction_date"`
	AccountReference         *string    `json:"account_reference"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// TableName keeps the table name used by existing deployments.
func (B2CTransaction) TableName() string {
	return "success_b2c_transactions"
}
