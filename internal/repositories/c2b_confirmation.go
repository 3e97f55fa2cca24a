package repositories

import (
	"context"

	"mpesagw/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type C2BConfirmationRepository struct {
	db *gorm.DB
}

func NewC2BConfirmationRepository(db *gorm.DB) *C2BConfirmationRepository {
	return &C2BConfirmationRepository{db: db}
}

// CreateIfAbsent inserts c unless its provider transaction id already exists.
func (r *C2BConfirmationRepository) CreateIfAbsent(ctx context.Context, c *models.C2BConfirmation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(c)
	return res.RowsAffected == 1, res.Error
}

// FindAfterID returns confirmations for shortcode with an id above lastID,
// oldest first.
func (r *C2BConfirmationRepository) FindAfterID(ctx context.Context, shortcode string, lastID uint) ([]models.C2BSummary, error) {
	records := []models.C2BSummary{}
	err := r.db.WithContext(ctx).
		Model(&models.C2BConfirmation{}).
		Select("id", "transaction_type", "transaction_id", "transaction_amount", "business_shortcode", "mobile_number", "first_name").
		Where("id > ? AND business_shortcode = ?", lastID, shortcode).
		Order("id ASC").
		Scan(&records).Error
	return records, err
}

func (r *C2BConfirmationRepository) FindByBillRef(ctx context.Context, billRef string) ([]models.C2BConfirmation, error) {
	records := []models.C2BConfirmation{}
	err := r.db.WithContext(ctx).Where("billref_no = ?", billRef).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *C2BConfirmationRepository) FindAll(ctx context.Context) ([]models.C2BConfirmation, error) {
	records := []models.C2BConfirmation{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}
