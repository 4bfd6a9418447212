package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/model"
)

// WebhookRepository provides access to webhook subscriptions
type WebhookRepository interface {
	Create(ctx context.Context, sub *model.WebhookSubscription) error
	List(ctx context.Context) ([]model.WebhookSubscription, error)
	ListByEvent(ctx context.Context, event string) ([]model.WebhookSubscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, sub *model.WebhookSubscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return errors.Wrap(err, "failed to create webhook subscription")
	}
	return nil
}

func (r *webhookRepository) List(ctx context.Context) ([]model.WebhookSubscription, error) {
	var subs []model.WebhookSubscription
	if err := r.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list webhook subscriptions")
	}
	return subs, nil
}

// ListByEvent returns subscriptions matching the event name or the "*"
// wildcard
func (r *webhookRepository) ListByEvent(ctx context.Context, event string) ([]model.WebhookSubscription, error) {
	var subs []model.WebhookSubscription
	err := r.db.WithContext(ctx).
		Where("event = ? OR event = ?", event, "*").
		Find(&subs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list webhook subscriptions by event")
	}
	return subs, nil
}

func (r *webhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.WebhookSubscription{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete webhook subscription")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
