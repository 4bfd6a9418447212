package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/model"
)

// GetWarehouseOrder loads one warehouse order with its items
func (s *Service) GetWarehouseOrder(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	return s.repos.WarehouseOrders.GetByID(ctx, id)
}

// ListWarehouseOrders returns all warehouse orders
func (s *Service) ListWarehouseOrders(ctx context.Context) ([]model.WarehouseOrder, error) {
	return s.repos.WarehouseOrders.List(ctx)
}

// ConfirmWarehouseOrder accepts a pending warehouse order and fixes its
// authoritative trigger scenario against module stock at the supermarket.
func (s *Service) ConfirmWarehouseOrder(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	order, err := s.repos.WarehouseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	open, available := 0, 0
	for _, item := range order.Items {
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		open++
		inStock, err := s.inventory.CheckStock(ctx, order.WorkstationID, item.ModuleID, remaining)
		if err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceWarehouseOrder, order.ID, "inventory", err)
			inStock = false
		}
		if inStock {
			available++
		}
	}
	scenario := model.ScenarioProductionRequired
	switch {
	case open == 0 || available == open:
		scenario = model.ScenarioDirectFulfillment
	case available > 0:
		scenario = model.ScenarioPartialFulfillment
	}

	effects, err := order.Confirm(scenario)
	if err != nil {
		return nil, err
	}
	if err := s.repos.WarehouseOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// FulfillWarehouseOrder debits available modules from the supermarket, opens
// a final assembly order per delivered line and raises a production order
// for any shortfall.
func (s *Service) FulfillWarehouseOrder(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	order, err := s.repos.WarehouseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.WarehouseOrderConfirmed && order.Status != model.WarehouseOrderModulesReady {
		return nil, &model.InvalidTransitionError{
			Source:    model.SourceWarehouseOrder,
			Current:   string(order.Status),
			Operation: model.OpFulfill,
			Allowed: []string{
				string(model.WarehouseOrderConfirmed),
				string(model.WarehouseOrderModulesReady),
			},
		}
	}

	// delivered holds the quantity newly debited per line, shortfall the
	// demand that has to be produced
	delivered := make(map[uuid.UUID]int)
	shortfall := make(map[int64]int)
	var debited []stockDebit
	for i := range order.Items {
		item := &order.Items[i]
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		inStock, err := s.inventory.CheckStock(ctx, order.WorkstationID, item.ModuleID, remaining)
		if err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceWarehouseOrder, order.ID, "inventory", err)
			inStock = false
		}
		if inStock {
			ok, err := s.inventory.Debit(ctx, order.WorkstationID, item.ModuleID, remaining)
			if err != nil {
				s.reportCollaboratorFailure(ctx, model.SourceWarehouseOrder, order.ID, "inventory", err)
			}
			if err == nil && ok {
				item.FulfilledQuantity = item.Quantity
				delivered[item.ID] = remaining
				debited = append(debited, stockDebit{ItemID: item.ModuleID, Quantity: remaining})
				continue
			}
		}
		shortfall[item.ModuleID] += remaining
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)

		for i := range order.Items {
			item := &order.Items[i]
			qty, ok := delivered[item.ID]
			if !ok {
				continue
			}
			fao, err := buildFinalAssemblyOrder(ctx, repos,
				model.ParentRef{Kind: model.ParentWarehouseOrder, ID: order.ID},
				item.ModuleID, qty)
			if err != nil {
				return err
			}
			effects = append(effects, model.Audit(model.SourceFinalAssemblyOrder, fao.ID,
				model.EventCreated, fmt.Sprintf("final assembly order %s created from warehouse order %s",
					fao.OrderNumber, order.OrderNumber)))
		}

		switch {
		case len(shortfall) == 0:
			fulfillEffects, err := order.MarkFulfilled()
			if err != nil {
				return err
			}
			effects = append(effects, fulfillEffects...)
		default:
			productionOrder, err := buildProductionOrder(ctx, repos,
				model.ParentRef{Kind: model.ParentWarehouseOrder, ID: order.ID},
				model.ItemTypeModule, shortfall, 0)
			if err != nil {
				return err
			}
			effects = append(effects, model.Audit(model.SourceProductionOrder, productionOrder.ID,
				model.EventCreated, fmt.Sprintf("production order %s created for warehouse order %s shortfall",
					productionOrder.OrderNumber, order.OrderNumber)))

			// a re-fulfilled MODULES_READY order goes back to PROCESSING
			// even when nothing was delivered this round
			var markEffects []model.Effect
			if len(delivered) == 0 && order.Status == model.WarehouseOrderConfirmed {
				markEffects, err = order.MarkPendingProduction(productionOrder.ID)
			} else {
				markEffects, err = order.MarkProcessing(productionOrder.ID)
			}
			if err != nil {
				return err
			}
			effects = append(effects, markEffects...)
		}

		return repos.WarehouseOrders.Save(ctx, order)
	})
	if err != nil {
		// the supermarket was already debited for the delivered lines; put
		// the stock back before surfacing the failure
		s.compensateDebits(ctx, order.WorkstationID, order.OrderNumber, debited)
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}
