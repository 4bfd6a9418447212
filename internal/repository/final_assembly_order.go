package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/factory/services/fulfillment/internal/model"
)

// FinalAssemblyOrderRepository provides access to final assembly orders
type FinalAssemblyOrderRepository interface {
	Create(ctx context.Context, order *model.FinalAssemblyOrder) error
	Save(ctx context.Context, order *model.FinalAssemblyOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error)
	List(ctx context.Context) ([]model.FinalAssemblyOrder, error)
	ListByParent(ctx context.Context, parent model.ParentRef) ([]model.FinalAssemblyOrder, error)
}

type finalAssemblyOrderRepository struct {
	db *gorm.DB
}

// NewFinalAssemblyOrderRepository creates a new final assembly order repository
func NewFinalAssemblyOrderRepository(db *gorm.DB) FinalAssemblyOrderRepository {
	return &finalAssemblyOrderRepository{db: db}
}

func (r *finalAssemblyOrderRepository) Create(ctx context.Context, order *model.FinalAssemblyOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return errors.Wrap(err, "failed to create final assembly order")
	}
	return nil
}

func (r *finalAssemblyOrderRepository) Save(ctx context.Context, order *model.FinalAssemblyOrder) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return errors.Wrap(err, "failed to save final assembly order")
	}
	return nil
}

func (r *finalAssemblyOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	var order model.FinalAssemblyOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get final assembly order")
	}
	return &order, nil
}

func (r *finalAssemblyOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	var order model.FinalAssemblyOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to lock final assembly order")
	}
	return &order, nil
}

func (r *finalAssemblyOrderRepository) List(ctx context.Context) ([]model.FinalAssemblyOrder, error) {
	var orders []model.FinalAssemblyOrder
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list final assembly orders")
	}
	return orders, nil
}

func (r *finalAssemblyOrderRepository) ListByParent(ctx context.Context, parent model.ParentRef) ([]model.FinalAssemblyOrder, error) {
	var orders []model.FinalAssemblyOrder
	err := r.db.WithContext(ctx).
		Where("parent_kind = ? AND parent_id = ?", parent.Kind, parent.ID).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list final assembly orders by parent")
	}
	return orders, nil
}
