package repositories

import (
	"context"

	"mpesagw/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type B2CTransactionRepository struct {
	db *gorm.DB
}

func NewB2CTransactionRepository(db *gorm.DB) *B2CTransactionRepository {
	return &B2CTransactionRepository{db: db}
}

// CreateIfAbsent inserts tx unless its conversation id was already recorded.
// It reports whether a row was written.
func (r *B2CTransactionRepository) CreateIfAbsent(ctx context.Context, tx *models.B2CTransaction) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoNothing: true,
		}).
		Create(tx)
	return res.RowsAffected == 1, res.Error
}

func (r *B2CTransactionRepository) FindByConversationID(ctx context.Context, conversationID string) (*models.B2CTransaction, error) {
	var tx models.B2CTransaction
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&tx).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}
