package service

import (
	"context"

	"github.com/google/uuid"

	"example.com/factory/services/fulfillment/internal/model"
)

// GetControlOrder loads one control order
func (s *Service) GetControlOrder(ctx context.Context, id uuid.UUID) (*model.ControlOrder, error) {
	return s.repos.ControlOrders.GetByID(ctx, id)
}

// ListControlOrders returns the control orders of one production order
func (s *Service) ListControlOrders(ctx context.Context, productionOrderID uuid.UUID) ([]model.ControlOrder, error) {
	return s.repos.ControlOrders.ListByProductionOrderID(ctx, productionOrderID)
}
