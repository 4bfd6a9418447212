package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// WorkstationOrderRepository provides access to workstation orders
type WorkstationOrderRepository interface {
	Create(ctx context.Context, order *model.WorkstationOrder) error
	Save(ctx context.Context, order *model.WorkstationOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error)
	GetBySupplyOrderID(ctx context.Context, supplyOrderID uuid.UUID) (*model.WorkstationOrder, error)
	List(ctx context.Context) ([]model.WorkstationOrder, error)
	ListByWorkstation(ctx context.Context, workstationID int) ([]model.WorkstationOrder, error)
	ListByControlOrderID(ctx context.Context, controlOrderID uuid.UUID) ([]model.WorkstationOrder, error)
}

type workstationOrderRepository struct {
	db *gorm.DB
}

// NewWorkstationOrderRepository creates a new workstation order repository
func NewWorkstationOrderRepository(db *gorm.DB) WorkstationOrderRepository {
	return &workstationOrderRepository{db: db}
}

func (r *workstationOrderRepository) Create(ctx context.Context, order *model.WorkstationOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create workstation order")
	}
	return nil
}

func (r *workstationOrderRepository) Save(ctx context.Context, order *model.WorkstationOrder) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
	if err != nil {
		return errors.Wrap(err, "failed to save workstation order")
	}
	return nil
}

func (r *workstationOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	var order model.WorkstationOrder
	err := r.db.WithContext(ctx).Preload("Inputs").First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get workstation order")
	}
	return &order, nil
}

func (r *workstationOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	var order model.WorkstationOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Inputs").
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock workstation order")
	}
	return &order, nil
}

func (r *workstationOrderRepository) GetBySupplyOrderID(ctx context.Context, supplyOrderID uuid.UUID) (*model.WorkstationOrder, error) {
	var order model.WorkstationOrder
	err := r.db.WithContext(ctx).
		Preload("Inputs").
		Where("supply_order_id = ?", supplyOrderID).
		First(&order).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get workstation order by supply order")
	}
	return &order, nil
}

func (r *workstationOrderRepository) List(ctx context.Context) ([]model.WorkstationOrder, error) {
	var orders []model.WorkstationOrder
	err := r.db.WithContext(ctx).Preload("Inputs").Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workstation orders")
	}
	return orders, nil
}

func (r *workstationOrderRepository) ListByWorkstation(ctx context.Context, workstationID int) ([]model.WorkstationOrder, error) {
	var orders []model.WorkstationOrder
	err := r.db.WithContext(ctx).
		Preload("Inputs").
		Where("workstation_id = ?", workstationID).
		Order("priority DESC, created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workstation orders by workstation")
	}
	return orders, nil
}

func (r *workstationOrderRepository) ListByControlOrderID(ctx context.Context, controlOrderID uuid.UUID) ([]model.WorkstationOrder, error) {
	var orders []model.WorkstationOrder
	err := r.db.WithContext(ctx).
		Preload("Inputs").
		Where("control_order_id = ?", controlOrderID).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workstation orders by control order")
	}
	return orders, nil
}
