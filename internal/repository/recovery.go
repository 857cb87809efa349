package repository

import (
	"context"
	"errors"

	"findlost/internal/models"

	"gorm.io/gorm"
)

// recoveryRepository implements RecoveryRepository
type recoveryRepository struct {
	db *gorm.DB
}

// NewRecoveryRepository creates a new recovery repository
func NewRecoveryRepository(db *gorm.DB) RecoveryRepository {
	return &recoveryRepository{db: db}
}

func (r *recoveryRepository) List(ctx context.Context, recovererEmail string) ([]models.RecoveredItem, error) {
	recs := []models.RecoveredItem{}
	q := r.db.WithContext(ctx)
	if recovererEmail != "" {
		q = q.Where("recovery_email = ?", recovererEmail)
	}
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Record runs the status flip and the insert in one transaction. The
// conditional update is the compare-and-swap: of two concurrent callers only
// one matches a not-recovered row.
func (r *recoveryRepository) Record(ctx context.Context, rec *models.RecoveredItem) error {
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Item{}).
			Where("id = ? AND status = ?", rec.ItemID, models.ItemStatusNotRecovered).
			Update("status", models.ItemStatusRecovered)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Item{}).Where("id = ?", rec.ItemID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}
