package repository

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// SequenceRepository issues human readable order numbers per prefix
type SequenceRepository interface {
	NextOrderNumber(ctx context.Context, prefix string) (string, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// NextOrderNumber increments the per-prefix counter under a row lock and
// formats the number, e.g. CO-000042.
func (r *sequenceRepository) NextOrderNumber(ctx context.Context, prefix string) (string, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := model.OrderSequence{Prefix: prefix}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "prefix = ?", prefix).Error; err != nil {
			return err
		}
		seq.Value++
		value = seq.Value
		return tx.Save(&seq).Error
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to advance order number sequence")
	}
	return fmt.Sprintf("%s-%06d", prefix, value), nil
}
