package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/model"
)

// propagateToParent advances a structural parent after a child order reached
// a terminal state. Each hop runs in its own transaction; the effects it
// produces may trigger the next hop.
func (s *Service) propagateToParent(ctx context.Context, eff model.NotifyParentEffect) error {
	switch eff.Parent.Kind {
	case model.ParentControlOrder:
		return s.advanceControlOrder(ctx, eff)
	case model.ParentProductionOrder:
		return s.advanceProductionOrder(ctx, eff)
	case model.ParentWarehouseOrder:
		return s.advanceWarehouseOrder(ctx, eff)
	case model.ParentCustomerOrder:
		return s.advanceCustomerOrder(ctx, eff)
	default:
		return errors.Errorf("unknown parent kind %q", eff.Parent.Kind)
	}
}

// advanceControlOrder counts a completed workstation order on its control
// order. The row is locked; concurrent completions at different stations
// must not lose counts.
func (s *Service) advanceControlOrder(ctx context.Context, eff model.NotifyParentEffect) error {
	var effects []model.Effect
	err := s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		control, err := repos.ControlOrders.GetByIDForUpdate(ctx, eff.Parent.ID)
		if err != nil {
			return err
		}
		effects, err = control.RecordChildCompletion(eff.ChildNumber)
		if err != nil {
			return err
		}
		return repos.ControlOrders.Save(ctx, control)
	})
	if err != nil {
		return err
	}
	s.runEffects(ctx, effects)
	return nil
}

// advanceProductionOrder reacts to a terminal child of a production order.
// A completed control order may complete production; a submitted final
// assembly order may advance the customer order behind a lot size run.
func (s *Service) advanceProductionOrder(ctx context.Context, eff model.NotifyParentEffect) error {
	switch eff.ChildSource {
	case model.SourceControlOrder:
		return s.completeProductionIfDone(ctx, eff)
	case model.SourceFinalAssemblyOrder:
		return s.advanceAfterFinalAssembly(ctx, eff)
	default:
		return errors.Errorf("unexpected child source %s for production order parent", eff.ChildSource)
	}
}

// completeProductionIfDone completes the production order once both its
// control orders are done.
func (s *Service) completeProductionIfDone(ctx context.Context, eff model.NotifyParentEffect) error {
	controls, err := s.repos.ControlOrders.ListByProductionOrderID(ctx, eff.Parent.ID)
	if err != nil {
		return err
	}
	for _, control := range controls {
		if control.Status != model.ControlOrderCompleted {
			return nil
		}
	}

	order, err := s.repos.ProductionOrders.GetByID(ctx, eff.Parent.ID)
	if err != nil {
		return err
	}
	effects, err := order.Complete()
	if err != nil {
		if model.IsInvalidTransition(err) {
			// a concurrent completion got here first
			return nil
		}
		return err
	}
	if err := s.repos.ProductionOrders.Save(ctx, order); err != nil {
		return err
	}
	s.runEffects(ctx, effects)
	return nil
}

// advanceWarehouseOrder reacts to a terminal child of a warehouse order
func (s *Service) advanceWarehouseOrder(ctx context.Context, eff model.NotifyParentEffect) error {
	switch eff.ChildSource {
	case model.SourceProductionOrder:
		// the shortfall was produced; the warehouse order becomes
		// fulfillable again
		order, err := s.repos.WarehouseOrders.GetByID(ctx, eff.Parent.ID)
		if err != nil {
			return err
		}
		effects, err := order.ModulesReady()
		if err != nil {
			return err
		}
		if err := s.repos.WarehouseOrders.Save(ctx, order); err != nil {
			return err
		}
		s.runEffects(ctx, effects)
		return nil
	case model.SourceFinalAssemblyOrder:
		return s.advanceAfterFinalAssembly(ctx, eff)
	default:
		return errors.Errorf("unexpected child source %s for warehouse order parent", eff.ChildSource)
	}
}

// advanceCustomerOrder reacts to a terminal child parented directly on a
// customer order. Completion of a lot size production run opens the final
// assembly stage.
func (s *Service) advanceCustomerOrder(ctx context.Context, eff model.NotifyParentEffect) error {
	if eff.ChildSource != model.SourceProductionOrder {
		return errors.Errorf("unexpected child source %s for customer order parent", eff.ChildSource)
	}
	production, err := s.repos.ProductionOrders.GetByID(ctx, eff.ChildID)
	if err != nil {
		return err
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		for _, item := range production.Items {
			fao, err := buildFinalAssemblyOrder(ctx, repos,
				model.ParentRef{Kind: model.ParentProductionOrder, ID: production.ID},
				item.ItemID, item.Quantity)
			if err != nil {
				return err
			}
			effects = append(effects, model.Audit(model.SourceFinalAssemblyOrder, fao.ID,
				model.EventCreated, fmt.Sprintf("final assembly order %s created from production order %s",
					fao.OrderNumber, production.OrderNumber)))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.runEffects(ctx, effects)
	return nil
}

// advanceAfterFinalAssembly checks whether the submitted final assembly
// order was the last of its siblings and, if so, advances the customer order
// back to CONFIRMED for direct fulfillment.
func (s *Service) advanceAfterFinalAssembly(ctx context.Context, eff model.NotifyParentEffect) error {
	siblings, err := s.repos.FinalAssemblyOrders.ListByParent(ctx, eff.Parent)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.Status != model.FinalAssemblyOrderSubmitted {
			return nil
		}
	}

	customerOrderID, err := s.resolveCustomerOrder(ctx, eff.Parent)
	if err != nil {
		return err
	}
	order, err := s.repos.CustomerOrders.GetByID(ctx, customerOrderID)
	if err != nil {
		return err
	}
	effects, err := order.Reopen()
	if err != nil {
		if model.IsInvalidTransition(err) {
			log.Warn().Str("order_number", order.OrderNumber).
				Str("status", string(order.Status)).
				Msg("cascade reached customer order in unexpected status")
			return nil
		}
		return err
	}
	if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
		return err
	}
	s.runEffects(ctx, effects)
	return nil
}

// resolveCustomerOrder walks from a final assembly parent up to the customer
// order that started the flow.
func (s *Service) resolveCustomerOrder(ctx context.Context, parent model.ParentRef) (customerOrderID uuid.UUID, err error) {
	switch parent.Kind {
	case model.ParentWarehouseOrder:
		warehouse, err := s.repos.WarehouseOrders.GetByID(ctx, parent.ID)
		if err != nil {
			return customerOrderID, err
		}
		return warehouse.CustomerOrderID, nil
	case model.ParentProductionOrder:
		production, err := s.repos.ProductionOrders.GetByID(ctx, parent.ID)
		if err != nil {
			return customerOrderID, err
		}
		if production.Parent.Kind == model.ParentWarehouseOrder {
			warehouse, err := s.repos.WarehouseOrders.GetByID(ctx, production.Parent.ID)
			if err != nil {
				return customerOrderID, err
			}
			return warehouse.CustomerOrderID, nil
		}
		return production.Parent.ID, nil
	default:
		return customerOrderID, errors.Errorf("cannot resolve customer order from parent kind %q", parent.Kind)
	}
}
