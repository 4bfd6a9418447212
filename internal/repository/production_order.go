package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// ProductionOrderRepository provides access to production orders
type ProductionOrderRepository interface {
	Create(ctx context.Context, order *model.ProductionOrder) error
	Save(ctx context.Context, order *model.ProductionOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	List(ctx context.Context) ([]model.ProductionOrder, error)
	ListByParent(ctx context.Context, parent model.ParentRef) ([]model.ProductionOrder, error)
}

type productionOrderRepository struct {
	db *gorm.DB
}

// NewProductionOrderRepository creates a new production order repository
func NewProductionOrderRepository(db *gorm.DB) ProductionOrderRepository {
	return &productionOrderRepository{db: db}
}

func (r *productionOrderRepository) Create(ctx context.Context, order *model.ProductionOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create production order")
	}
	return nil
}

func (r *productionOrderRepository) Save(ctx context.Context, order *model.ProductionOrder) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return errors.Wrap(err, "failed to save production order")
	}
	return nil
}

func (r *productionOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	var order model.ProductionOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get production order")
	}
	return &order, nil
}

func (r *productionOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	var order model.ProductionOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock production order")
	}
	return &order, nil
}

func (r *productionOrderRepository) List(ctx context.Context) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list production orders")
	}
	return orders, nil
}

func (r *productionOrderRepository) ListByParent(ctx context.Context, parent model.ParentRef) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("parent_kind = ? AND parent_id = ?", parent.Kind, parent.ID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list production orders by parent")
	}
	return orders, nil
}
