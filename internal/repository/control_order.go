package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// ControlOrderRepository provides access to control orders
type ControlOrderRepository interface {
	Create(ctx context.Context, order *model.ControlOrder) error
	Save(ctx context.Context, order *model.ControlOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ControlOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ControlOrder, error)
	ListByProductionOrderID(ctx context.Context, productionOrderID uuid.UUID) ([]model.ControlOrder, error)
}

type controlOrderRepository struct {
	db *gorm.DB
}

// NewControlOrderRepository creates a new control order repository
func NewControlOrderRepository(db *gorm.DB) ControlOrderRepository {
	return &controlOrderRepository{db: db}
}

func (r *controlOrderRepository) Create(ctx context.Context, order *model.ControlOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create control order")
	}
	return nil
}

func (r *controlOrderRepository) Save(ctx context.Context, order *model.ControlOrder) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return errors.Wrap(err, "failed to save control order")
	}
	return nil
}

func (r *controlOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ControlOrder, error) {
	var order model.ControlOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get control order")
	}
	return &order, nil
}

func (r *controlOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ControlOrder, error) {
	var order model.ControlOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock control order")
	}
	return &order, nil
}

func (r *controlOrderRepository) ListByProductionOrderID(ctx context.Context, productionOrderID uuid.UUID) ([]model.ControlOrder, error) {
	var orders []model.ControlOrder
	err := r.db.WithContext(ctx).
		Where("production_order_id = ?", productionOrderID).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list control orders by production order")
	}
	return orders, nil
}
