package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
)

// FulfillCustomerOrder routes a confirmed order down the fulfillment path
// that matches live stock at this instant. The scenario recorded at confirm
// time is discarded; stock may have moved since.
func (s *Service) FulfillCustomerOrder(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	started := time.Now()
	defer func() {
		s.metrics.RecordDuration(metrics.TimerFulfillment, time.Since(started))
	}()

	order, err := s.repos.CustomerOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.CustomerOrderConfirmed {
		return nil, &model.InvalidTransitionError{
			Source:    model.SourceCustomerOrder,
			Current:   string(order.Status),
			Operation: model.OpFulfill,
			Allowed:   []string{string(model.CustomerOrderConfirmed)},
		}
	}

	scenario, availability := s.deriveScenario(ctx, order)
	log.Info().
		Str("order_number", order.OrderNumber).
		Str("scenario", string(scenario)).
		Msg("fulfilling customer order")

	switch scenario {
	case model.ScenarioDirectFulfillment:
		s.metrics.Increment(metrics.CounterScenarioDirect)
		return s.fulfillDirect(ctx, order)
	case model.ScenarioWarehouseOrderNeeded:
		s.metrics.Increment(metrics.CounterScenarioWarehouse)
		return s.fulfillViaWarehouse(ctx, order, nil)
	case model.ScenarioPartialFulfillment:
		s.metrics.Increment(metrics.CounterScenarioPartial)
		return s.fulfillViaWarehouse(ctx, order, availability)
	case model.ScenarioProductionPlanning:
		s.metrics.Increment(metrics.CounterScenarioProduction)
		return s.fulfillViaProduction(ctx, order)
	default:
		return nil, fmt.Errorf("unknown trigger scenario %s", scenario)
	}
}

// fulfillDirect debits every open line from plant warehouse stock and
// completes the order. A debit failure cancels the order; already debited
// stock is credited back best effort.
func (s *Service) fulfillDirect(ctx context.Context, order *model.CustomerOrder) (*model.CustomerOrder, error) {
	var debited []stockDebit

	for i := range order.Items {
		item := &order.Items[i]
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		ok, err := s.inventory.Debit(ctx, order.WorkstationID, item.ItemID, remaining)
		if err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceCustomerOrder, order.ID, "inventory", err)
		}
		if err != nil || !ok {
			s.compensateDebits(ctx, order.WorkstationID, order.OrderNumber, debited)
			return s.failFulfillment(ctx, order,
				fmt.Sprintf("stock debit failed for item %d", item.ItemID))
		}
		debited = append(debited, stockDebit{ItemID: item.ItemID, Quantity: remaining})
		item.FulfilledQuantity = item.Quantity
	}

	effects, err := order.FulfillDirect()
	if err != nil {
		return nil, err
	}
	if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.Increment(metrics.CounterOrdersCompleted)
	s.runEffects(ctx, effects)
	return order, nil
}

// fulfillViaWarehouse explodes the unavailable lines into module demand and
// hands them to the modules supermarket. With a nil availability map every
// open line is considered unavailable (scenario 2); otherwise the available
// lines are debited first (scenario 3).
func (s *Service) fulfillViaWarehouse(ctx context.Context, order *model.CustomerOrder, availability map[uuid.UUID]bool) (*model.CustomerOrder, error) {
	scenario := model.ScenarioWarehouseOrderNeeded
	partial := availability != nil

	var shortfall []demandLine
	for i := range order.Items {
		item := &order.Items[i]
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		if partial && availability[item.ID] {
			ok, err := s.inventory.Debit(ctx, order.WorkstationID, item.ItemID, remaining)
			if err != nil {
				s.reportCollaboratorFailure(ctx, model.SourceCustomerOrder, order.ID, "inventory", err)
			}
			if err == nil && ok {
				item.FulfilledQuantity = item.Quantity
				continue
			}
			// the line looked available a moment ago; fall through and
			// order it from the supermarket instead
		}
		shortfall = append(shortfall, demandLine{
			ItemType: item.ItemType,
			ItemID:   item.ItemID,
			Quantity: remaining,
		})
	}
	if partial {
		scenario = model.ScenarioPartialFulfillment
	}
	if len(shortfall) == 0 {
		// every line was debited after all
		effects, err := order.FulfillDirect()
		if err != nil {
			return nil, err
		}
		if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
			return nil, err
		}
		s.metrics.Increment(metrics.CounterOrdersCompleted)
		s.runEffects(ctx, effects)
		return order, nil
	}

	demand, err := s.aggregateModuleDemand(ctx, shortfall)
	if err != nil {
		return nil, err
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		warehouseOrder, err := buildWarehouseOrder(ctx, repos, order, demand)
		if err != nil {
			return err
		}
		effects, err = order.FulfillDownstream(scenario)
		if err != nil {
			return err
		}
		if err := repos.CustomerOrders.Save(ctx, order); err != nil {
			return err
		}
		effects = append(effects, model.Audit(model.SourceWarehouseOrder, warehouseOrder.ID,
			model.EventCreated, fmt.Sprintf("warehouse order %s created for customer order %s with %d module lines",
				warehouseOrder.OrderNumber, order.OrderNumber, len(warehouseOrder.Items))))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// fulfillViaProduction skips stock entirely and raises a production order
// for the whole demand. Selected when the order size crosses the lot size
// threshold.
func (s *Service) fulfillViaProduction(ctx context.Context, order *model.CustomerOrder) (*model.CustomerOrder, error) {
	demand, err := s.aggregateModuleDemand(ctx, demandLines(order))
	if err != nil {
		return nil, err
	}

	var effects []model.Effect
	err = s.repos.DB.Transaction(func(tx *gorm.DB) error {
		repos := s.repos.WithTx(tx)
		productionOrder, err := buildProductionOrder(ctx, repos,
			model.ParentRef{Kind: model.ParentCustomerOrder, ID: order.ID},
			model.ItemTypeModule, demand, order.TotalQuantity())
		if err != nil {
			return err
		}
		effects, err = order.FulfillDownstream(model.ScenarioProductionPlanning)
		if err != nil {
			return err
		}
		if err := repos.CustomerOrders.Save(ctx, order); err != nil {
			return err
		}
		effects = append(effects, model.Audit(model.SourceProductionOrder, productionOrder.ID,
			model.EventCreated, fmt.Sprintf("production order %s created for customer order %s, lot size %d",
				productionOrder.OrderNumber, order.OrderNumber, order.TotalQuantity())))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// failFulfillment cancels the order after a debit failure
func (s *Service) failFulfillment(ctx context.Context, order *model.CustomerOrder, reason string) (*model.CustomerOrder, error) {
	effects, err := order.FulfillFailed(reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.Increment(metrics.CounterOrdersCancelled)
	s.runEffects(ctx, effects)
	return order, nil
}

// stockDebit records one successful debit so it can be credited back if a
// later line fails
type stockDebit struct {
	ItemID   int64
	Quantity int
}

// compensateDebits credits back stock debited before a later step failed
func (s *Service) compensateDebits(ctx context.Context, workstationID int, orderNumber string, debits []stockDebit) {
	for _, d := range debits {
		if _, err := s.inventory.Credit(ctx, workstationID, d.ItemID, d.Quantity); err != nil {
			log.Error().Err(err).Int64("item_id", d.ItemID).Int("quantity", d.Quantity).
				Str("order_number", orderNumber).
				Msg("failed to credit stock back after debit failure")
		}
	}
}

// demandLines converts the open quantities of an order into demand lines
func demandLines(order *model.CustomerOrder) []demandLine {
	lines := make([]demandLine, 0, len(order.Items))
	for _, item := range order.Items {
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		lines = append(lines, demandLine{
			ItemType: item.ItemType,
			ItemID:   item.ItemID,
			Quantity: remaining,
		})
	}
	return lines
}
