package repositories

import (
	"context"

	"mpesagw/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type STKPaymentRepository struct {
	db *gorm.DB
}

func NewSTKPaymentRepository(db *gorm.DB) *STKPaymentRepository {
	return &STKPaymentRepository{db: db}
}

// Create stores a freshly initiated payment.
func (r *STKPaymentRepository) Create(ctx context.Context, p *models.STKPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateIfAbsent inserts p unless a row with the same checkout request id
// exists. It reports whether a row was written.
func (r *STKPaymentRepository) CreateIfAbsent(ctx context.Context, p *models.STKPayment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_request_id"}},
			DoNothing: true,
		}).
		Create(p)
	return res.RowsAffected == 1, res.Error
}

// Settle applies a callback outcome to a pending payment. Only a row still in
// the pending state is updated, so a redelivered callback reports false.
// Optional fields missing from the callback keep their initiated values.
func (r *STKPaymentRepository) Settle(ctx context.Context, p *models.STKPayment) (bool, error) {
	updates := map[string]interface{}{
		"status":      p.Status,
		"result_code": p.ResultCode,
		"result_desc": p.ResultDesc,
		"callback":    p.Callback,
	}
	if p.TransactionID != nil {
		updates["transaction_id"] = p.TransactionID
	}
	if p.TransactionDate != nil {
		updates["transaction_date"] = p.TransactionDate
	}
	if p.Amount != nil {
		updates["amount"] = p.Amount
	}
	if p.MSISDN != nil {
		updates["msisdn"] = p.MSISDN
	}

	res := r.db.WithContext(ctx).
		Model(&models.STKPayment{}).
		Where("checkout_request_id = ? AND status = ?", p.CheckoutRequestID, models.STKStatusPending).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *STKPaymentRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.STKPayment, error) {
	var p models.STKPayment
	err := r.db.WithContext(ctx).Where("checkout_request_id = ?", checkoutRequestID).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *STKPaymentRepository) FindByAccountReference(ctx context.Context, accountReference string) (*models.STKPayment, error) {
	var p models.STKPayment
	err := r.db.WithContext(ctx).
		Where("account_reference = ?", accountReference).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *STKPaymentRepository) FindByShortcode(ctx context.Context, shortcode string) ([]models.STKPayment, error) {
	payments := []models.STKPayment{}
	err := r.db.WithContext(ctx).
		Where("business_shortcode = ?", shortcode).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}
