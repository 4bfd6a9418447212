package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// WarehouseOrderRepository provides access to warehouse orders
type WarehouseOrderRepository interface {
	Create(ctx context.Context, order *model.WarehouseOrder) error
	Save(ctx context.Context, order *model.WarehouseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error)
	GetByProductionOrderID(ctx context.Context, productionOrderID uuid.UUID) (*model.WarehouseOrder, error)
	ListByCustomerOrderID(ctx context.Context, customerOrderID uuid.UUID) ([]model.WarehouseOrder, error)
	List(ctx context.Context) ([]model.WarehouseOrder, error)
}

type warehouseOrderRepository struct {
	db *gorm.DB
}

// NewWarehouseOrderRepository creates a new warehouse order repository
func NewWarehouseOrderRepository(db *gorm.DB) WarehouseOrderRepository {
	return &warehouseOrderRepository{db: db}
}

func (r *warehouseOrderRepository) Create(ctx context.Context, order *model.WarehouseOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create warehouse order")
	}
	return nil
}

func (r *warehouseOrderRepository) Save(ctx context.Context, order *model.WarehouseOrder) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return errors.Wrap(err, "failed to save warehouse order")
	}
	return nil
}

func (r *warehouseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	var order model.WarehouseOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get warehouse order")
	}
	return &order, nil
}

func (r *warehouseOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	var order model.WarehouseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock warehouse order")
	}
	return &order, nil
}

func (r *warehouseOrderRepository) GetByProductionOrderID(ctx context.Context, productionOrderID uuid.UUID) (*model.WarehouseOrder, error) {
	var order model.WarehouseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("production_order_id = ?", productionOrderID).
		First(&order).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get warehouse order by production order")
	}
	return &order, nil
}

func (r *warehouseOrderRepository) ListByCustomerOrderID(ctx context.Context, customerOrderID uuid.UUID) ([]model.WarehouseOrder, error) {
	var orders []model.WarehouseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_order_id = ?", customerOrderID).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list warehouse orders by customer order")
	}
	return orders, nil
}

func (r *warehouseOrderRepository) List(ctx context.Context) ([]model.WarehouseOrder, error) {
	var orders []model.WarehouseOrder
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list warehouse orders")
	}
	return orders, nil
}
