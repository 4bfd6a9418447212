package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// CustomerOrderRepository provides access to customer orders
type CustomerOrderRepository interface {
	Create(ctx context.Context, order *model.CustomerOrder) error
	Save(ctx context.Context, order *model.CustomerOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error)
	List(ctx context.Context) ([]model.CustomerOrder, error)
	ListByWorkstationAndStatus(ctx context.Context, workstationID int, status model.CustomerOrderStatus) ([]model.CustomerOrder, error)
	Delete(ctx context.Context, order *model.CustomerOrder) error
}

type customerOrderRepository struct {
	db *gorm.DB
}

// NewCustomerOrderRepository creates a new customer order repository
func NewCustomerOrderRepository(db *gorm.DB) CustomerOrderRepository {
	return &customerOrderRepository{db: db}
}

func (r *customerOrderRepository) Create(ctx context.Context, order *model.CustomerOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create customer order")
	}
	return nil
}

func (r *customerOrderRepository) Save(ctx context.Context, order *model.CustomerOrder) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return errors.Wrap(err, "failed to save customer order")
	}
	return nil
}

func (r *customerOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	var order model.CustomerOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get customer order")
	}
	return &order, nil
}

// GetByIDForUpdate locks the order row for the duration of the surrounding
// transaction
func (r *customerOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	var order model.CustomerOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock customer order")
	}
	return &order, nil
}

func (r *customerOrderRepository) List(ctx context.Context) ([]model.CustomerOrder, error) {
	var orders []model.CustomerOrder
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customer orders")
	}
	return orders, nil
}

func (r *customerOrderRepository) ListByWorkstationAndStatus(ctx context.Context, workstationID int, status model.CustomerOrderStatus) ([]model.CustomerOrder, error) {
	var orders []model.CustomerOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("workstation_id = ? AND status = ?", workstationID, status).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customer orders by workstation")
	}
	return orders, nil
}

func (r *customerOrderRepository) Delete(ctx context.Context, order *model.CustomerOrder) error {
	result := r.db.WithContext(ctx).Select(clause.Associations).Delete(order)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete customer order")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
