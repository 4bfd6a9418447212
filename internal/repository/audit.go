package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/model"
)

// AuditRepository is the append-only audit event store. Events are never
// updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	ListBySource(ctx context.Context, sourceType model.SourceType, orderID uuid.UUID) ([]model.AuditEvent, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, event *model.AuditEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return errors.Wrap(err, "failed to append audit event")
	}
	return nil
}

func (r *auditRepository) ListBySource(ctx context.Context, sourceType model.SourceType, orderID uuid.UUID) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("source_type = ? AND order_id = ?", sourceType, orderID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}
