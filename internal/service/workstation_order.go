package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/clients"
	"example.com/factory/services/fulfillment/internal/model"
)

// GetWorkstationOrder loads one workstation order with its inputs
func (s *Service) GetWorkstationOrder(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	return s.repos.WorkstationOrders.GetByID(ctx, id)
}

// ListWorkstationOrders returns workstation orders, optionally filtered to
// one workstation.
func (s *Service) ListWorkstationOrders(ctx context.Context, workstationID int) ([]model.WorkstationOrder, error) {
	if workstationID > 0 {
		return s.repos.WorkstationOrders.ListByWorkstation(ctx, workstationID)
	}
	return s.repos.WorkstationOrders.List(ctx)
}

// StartWorkstationOrder begins work at the station. First activity under a
// control order moves the control order and its production order along.
func (s *Service) StartWorkstationOrder(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	order, err := s.repos.WorkstationOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Start()
	if err != nil {
		return nil, err
	}
	if err := s.repos.WorkstationOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	s.startControlOrderIfNeeded(ctx, order.ControlOrderID)
	s.updateScheduledTask(ctx, order, "IN_PROGRESS")
	return order, nil
}

// HaltWorkstationOrder pauses an in-progress order
func (s *Service) HaltWorkstationOrder(ctx context.Context, id uuid.UUID, reason string) (*model.WorkstationOrder, error) {
	order, err := s.repos.WorkstationOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Halt(reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.WorkstationOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// ResumeWorkstationOrder continues a halted order
func (s *Service) ResumeWorkstationOrder(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	order, err := s.repos.WorkstationOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Resume()
	if err != nil {
		return nil, err
	}
	if err := s.repos.WorkstationOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CompleteWorkstationOrder finishes the order, credits the produced item to
// the modules supermarket and counts the completion on the control order.
func (s *Service) CompleteWorkstationOrder(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	order, err := s.repos.WorkstationOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Complete()
	if err != nil {
		return nil, err
	}
	if err := s.repos.WorkstationOrders.Save(ctx, order); err != nil {
		return nil, err
	}

	// assembly output lands in the modules supermarket for the warehouse
	// tier to pick up
	if order.ControlOrderType == model.ControlOrderAssembly {
		if _, err := s.inventory.Credit(ctx, model.WorkstationModulesSupermarket, order.OutputItemID, order.Quantity); err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceWorkstationOrder, order.ID, "inventory", err)
		}
	}
	s.updateScheduledTask(ctx, order, "COMPLETED")
	s.runEffects(ctx, effects)
	return order, nil
}

// RequestParts blocks the order on a new supply order covering its input
// parts.
func (s *Service) RequestParts(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	order, err := s.repos.WorkstationOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(order.Inputs) == 0 {
		return nil, model.NewValidationError().
			Violation("workstation order %s has no input parts to request", order.OrderNumber)
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		supplyOrder, err := buildSupplyOrder(ctx, repos, order)
		if err != nil {
			return err
		}
		effects, err = order.MarkWaitingForParts(supplyOrder.ID)
		if err != nil {
			return err
		}
		effects = append(effects, model.Audit(model.SourceSupplyOrder, supplyOrder.ID,
			model.EventCreated, fmt.Sprintf("supply order %s created for workstation order %s with %d part lines",
				supplyOrder.OrderNumber, order.OrderNumber, len(supplyOrder.Items))))
		return repos.WorkstationOrders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// startControlOrderIfNeeded moves an OPEN control order into progress and
// propagates first activity up to the production order.
func (s *Service) startControlOrderIfNeeded(ctx context.Context, controlOrderID uuid.UUID) {
	control, err := s.repos.ControlOrders.GetByID(ctx, controlOrderID)
	if err != nil {
		log.Error().Err(err).Str("control_order_id", controlOrderID.String()).
			Msg("failed to load control order")
		return
	}
	if control.Status != model.ControlOrderOpen {
		return
	}
	effects, err := control.Start()
	if err != nil {
		return
	}
	if err := s.repos.ControlOrders.Save(ctx, control); err != nil {
		log.Error().Err(err).Str("order_number", control.OrderNumber).
			Msg("failed to start control order")
		return
	}
	s.runEffects(ctx, effects)
	s.startProductionOrderIfNeeded(ctx, control.ProductionOrderID)
}

// updateScheduledTask reports task progress to the production scheduler,
// best effort.
func (s *Service) updateScheduledTask(ctx context.Context, order *model.WorkstationOrder, status string) {
	taskID := clients.TaskID(order.WorkstationID, order.OrderNumber)
	if err := s.scheduler.UpdateTaskStatus(ctx, taskID, status); err != nil {
		s.reportCollaboratorFailure(ctx, model.SourceWorkstationOrder, order.ID, "scheduler", err)
	}
}
