package service

import (
	"context"

	"github.com/google/uuid"

	"example.com/factory/services/fulfillment/internal/model"
)

// GetFinalAssemblyOrder loads one final assembly order
func (s *Service) GetFinalAssemblyOrder(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	return s.repos.FinalAssemblyOrders.GetByID(ctx, id)
}

// ListFinalAssemblyOrders returns all final assembly orders
func (s *Service) ListFinalAssemblyOrders(ctx context.Context) ([]model.FinalAssemblyOrder, error) {
	return s.repos.FinalAssemblyOrders.List(ctx)
}

// StartFinalAssemblyOrder begins assembling at the final assembly station
func (s *Service) StartFinalAssemblyOrder(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	order, err := s.repos.FinalAssemblyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Start()
	if err != nil {
		return nil, err
	}
	if err := s.repos.FinalAssemblyOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CompleteFinalAssemblyOrder finishes assembling the product
func (s *Service) CompleteFinalAssemblyOrder(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	order, err := s.repos.FinalAssemblyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Complete()
	if err != nil {
		return nil, err
	}
	if err := s.repos.FinalAssemblyOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// SubmitFinalAssemblyOrder hands the finished product to the plant warehouse
// and triggers the cascade toward the customer order.
func (s *Service) SubmitFinalAssemblyOrder(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	order, err := s.repos.FinalAssemblyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Submit()
	if err != nil {
		return nil, err
	}
	if err := s.repos.FinalAssemblyOrders.Save(ctx, order); err != nil {
		return nil, err
	}

	if _, err := s.inventory.Credit(ctx, model.WorkstationPlantWarehouse, order.OutputProductID, order.OutputQuantity); err != nil {
		s.reportCollaboratorFailure(ctx, model.SourceFinalAssemblyOrder, order.ID, "inventory", err)
	}
	s.runEffects(ctx, effects)
	return order, nil
}
