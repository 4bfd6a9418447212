package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// SupplyOrderRepository provides access to supply orders
type SupplyOrderRepository interface {
	Create(ctx context.Context, order *model.SupplyOrder) error
	Save(ctx context.Context, order *model.SupplyOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error)
	List(ctx context.Context) ([]model.SupplyOrder, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.SupplyOrder, error)
}

type supplyOrderRepository struct {
	db *gorm.DB
}

// NewSupplyOrderRepository creates a new supply order repository
func NewSupplyOrderRepository(db *gorm.DB) SupplyOrderRepository {
	return &supplyOrderRepository{db: db}
}

func (r *supplyOrderRepository) Create(ctx context.Context, order *model.SupplyOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create supply order")
	}
	return nil
}

func (r *supplyOrderRepository) Save(ctx context.Context, order *model.SupplyOrder) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return errors.Wrap(err, "failed to save supply order")
	}
	return nil
}

func (r *supplyOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error) {
	var order model.SupplyOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get supply order")
	}
	return &order, nil
}

func (r *supplyOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error) {
	var order model.SupplyOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock supply order")
	}
	return &order, nil
}

func (r *supplyOrderRepository) List(ctx context.Context) ([]model.SupplyOrder, error) {
	var orders []model.SupplyOrder
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list supply orders")
	}
	return orders, nil
}

// ListPendingOlderThan finds stale pending supply orders for the worker's
// staleness report
func (r *supplyOrderRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]model.SupplyOrder, error) {
	var orders []model.SupplyOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.SupplyOrderPending, cutoff).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stale supply orders")
	}
	return orders, nil
}
