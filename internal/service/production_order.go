package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/model"
)

// GetProductionOrder loads one production order with its items
func (s *Service) GetProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	return s.repos.ProductionOrders.GetByID(ctx, id)
}

// ListProductionOrders returns all production orders
func (s *Service) ListProductionOrders(ctx context.Context) ([]model.ProductionOrder, error) {
	return s.repos.ProductionOrders.List(ctx)
}

// ConfirmProductionOrder accepts a created production order
func (s *Service) ConfirmProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Confirm()
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// ScheduleProductionOrder submits the order to the production scheduler and
// stores the returned schedule linkage.
func (s *Service) ScheduleProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.ProductionOrderConfirmed {
		return nil, &model.InvalidTransitionError{
			Source:    model.SourceProductionOrder,
			Current:   string(order.Status),
			Operation: model.OpSchedule,
			Allowed:   []string{string(model.ProductionOrderConfirmed)},
		}
	}

	result, err := s.scheduler.Submit(ctx, order)
	if err != nil {
		s.reportCollaboratorFailure(ctx, model.SourceProductionOrder, order.ID, "scheduler", err)
		return nil, err
	}

	effects, err := order.Schedule(result.ScheduleID, result.EstimatedDurationSecs, result.ExpectedAt)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// DispatchProductionOrder releases a scheduled order to the shop floor. Each
// item becomes one manufacturing workstation order (stations 1-3) with its
// part inputs exploded through the bill of materials, and one assembly
// workstation order (stations 4-5), each half under its own control order.
func (s *Service) DispatchProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)

		production, err := buildControlOrder(ctx, repos, order.ID,
			model.ControlOrderProduction, len(order.Items))
		if err != nil {
			return err
		}
		assembly, err := buildControlOrder(ctx, repos, order.ID,
			model.ControlOrderAssembly, len(order.Items))
		if err != nil {
			return err
		}

		for i, item := range order.Items {
			station := manufacturingStations[i%len(manufacturingStations)]
			wso, err := s.buildWorkstationOrder(ctx, repos, production, station, item, order.Priority)
			if err != nil {
				return err
			}
			effects = append(effects, model.Audit(model.SourceWorkstationOrder, wso.ID,
				model.EventCreated, fmt.Sprintf("workstation order %s created at workstation %d for item %d",
					wso.OrderNumber, station, item.ItemID)))

			station = assemblyStations[i%len(assemblyStations)]
			wso, err = s.buildWorkstationOrder(ctx, repos, assembly, station, item, order.Priority)
			if err != nil {
				return err
			}
			effects = append(effects, model.Audit(model.SourceWorkstationOrder, wso.ID,
				model.EventCreated, fmt.Sprintf("workstation order %s created at workstation %d for item %d",
					wso.OrderNumber, station, item.ItemID)))
		}

		effects = append(effects,
			model.Audit(model.SourceControlOrder, production.ID, model.EventCreated,
				fmt.Sprintf("control order %s opened over %d manufacturing orders", production.OrderNumber, len(order.Items))),
			model.Audit(model.SourceControlOrder, assembly.ID, model.EventCreated,
				fmt.Sprintf("control order %s opened over %d assembly orders", assembly.OrderNumber, len(order.Items))),
		)

		dispatchEffects, err := order.Dispatch()
		if err != nil {
			return err
		}
		effects = append(effects, dispatchEffects...)
		return repos.ProductionOrders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// StartProductionOrder records shop floor activity explicitly. Normally the
// first workstation order start does this implicitly.
func (s *Service) StartProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Start()
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CompleteProductionOrder completes the order explicitly. Normally the last
// control order completion does this through the cascade.
func (s *Service) CompleteProductionOrder(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Complete()
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CancelProductionOrder aborts an order before completion
func (s *Service) CancelProductionOrder(ctx context.Context, id uuid.UUID, reason string) (*model.ProductionOrder, error) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Cancel(reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// startProductionOrderIfNeeded records first shop floor activity on the
// production order above a control order.
func (s *Service) startProductionOrderIfNeeded(ctx context.Context, productionOrderID uuid.UUID) {
	order, err := s.repos.ProductionOrders.GetByID(ctx, productionOrderID)
	if err != nil {
		return
	}
	if order.Status != model.ProductionOrderDispatched {
		return
	}
	effects, err := order.Start()
	if err != nil {
		return
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return
	}
	s.runEffects(ctx, effects)
}
