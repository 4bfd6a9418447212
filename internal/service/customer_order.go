package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
)

// CustomerOrderItemInput is one requested line of a new customer order
type CustomerOrderItemInput struct {
	ItemType model.ItemType `json:"item_type" binding:"required"`
	ItemID   int64          `json:"item_id" binding:"required"`
	Quantity int            `json:"quantity" binding:"required"`
}

// CreateCustomerOrderInput is the payload for creating a customer order
type CreateCustomerOrderInput struct {
	WorkstationID int                      `json:"workstation_id"`
	Notes         string                   `json:"notes"`
	Items         []CustomerOrderItemInput `json:"items" binding:"required"`
}

// CreateCustomerOrder validates the request, assigns an order number and
// persists the order in PENDING.
func (s *Service) CreateCustomerOrder(ctx context.Context, input CreateCustomerOrderInput) (*model.CustomerOrder, error) {
	workstationID := input.WorkstationID
	if workstationID == 0 {
		workstationID = model.WorkstationPlantWarehouse
	}

	order := &model.CustomerOrder{
		Base:          model.Base{ID: uuid.New()},
		WorkstationID: workstationID,
		Status:        model.CustomerOrderPending,
		Notes:         input.Notes,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, model.CustomerOrderItem{
			Base:            model.Base{ID: uuid.New()},
			CustomerOrderID: order.ID,
			ItemType:        item.ItemType,
			ItemID:          item.ItemID,
			Quantity:        item.Quantity,
		})
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	number, err := s.repos.Sequences.NextOrderNumber(ctx, prefixCustomerOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign order number")
	}
	order.OrderNumber = number

	if err := s.repos.CustomerOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.metrics.Increment(metrics.CounterOrdersCreated)
	s.recordAudit(ctx, model.Audit(model.SourceCustomerOrder, order.ID, model.EventCreated,
		fmt.Sprintf("customer order %s created with %d items", order.OrderNumber, len(order.Items))))
	return order, nil
}

// GetCustomerOrder loads one customer order with its items
func (s *Service) GetCustomerOrder(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	return s.repos.CustomerOrders.GetByID(ctx, id)
}

// ListCustomerOrders returns all customer orders, newest first
func (s *Service) ListCustomerOrders(ctx context.Context) ([]model.CustomerOrder, error) {
	return s.repos.CustomerOrders.List(ctx)
}

// DeleteCustomerOrder removes an order that never entered the fulfillment
// flow. Anything past PENDING must be cancelled instead.
func (s *Service) DeleteCustomerOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.repos.CustomerOrders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return &model.InvalidTransitionError{
			Source:    model.SourceCustomerOrder,
			Current:   string(order.Status),
			Operation: "delete",
			Allowed:   []string{string(model.CustomerOrderPending)},
		}
	}
	if err := s.repos.CustomerOrders.Delete(ctx, order); err != nil {
		return err
	}
	s.recordAudit(ctx, model.Audit(model.SourceCustomerOrder, order.ID, model.EventDeleted,
		fmt.Sprintf("customer order %s deleted before confirmation", order.OrderNumber)))
	return nil
}

// ConfirmCustomerOrder moves a pending order to CONFIRMED and records the
// predicted trigger scenario. The prediction is advisory; fulfillment
// re-derives it against live stock.
func (s *Service) ConfirmCustomerOrder(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	order, err := s.repos.CustomerOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	predicted, _ := s.deriveScenario(ctx, order)
	if predicted == model.ScenarioPartialFulfillment {
		// the prediction only distinguishes "everything in stock" from
		// "a warehouse order will be needed"
		predicted = model.ScenarioWarehouseOrderNeeded
	}

	effects, err := order.Confirm(predicted)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CancelCustomerOrder cancels an order that has not completed
func (s *Service) CancelCustomerOrder(ctx context.Context, id uuid.UUID, reason string) (*model.CustomerOrder, error) {
	order, err := s.repos.CustomerOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Cancel(reason)
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

// CompleteCustomerOrder closes a processing order once every downstream order
// has finished and every final assembly order feeding it has been submitted.
func (s *Service) CompleteCustomerOrder(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	order, err := s.repos.CustomerOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	done, err := s.canComplete(ctx, order)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, model.NewValidationError().
			Violation("order %s still has unfinished downstream orders", order.OrderNumber)
	}
	effects, err := order.Complete()
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

// canComplete reports whether every downstream order raised on behalf of the
// customer order has finished: warehouse orders fulfilled, production orders
// completed, and every derived final assembly order submitted to the plant
// warehouse. An open warehouse order with no assembly orders yet is not
// finished.
func (s *Service) canComplete(ctx context.Context, order *model.CustomerOrder) (bool, error) {
	parents := []model.ParentRef{}

	warehouseOrders, err := s.repos.WarehouseOrders.ListByCustomerOrderID(ctx, order.ID)
	if err != nil {
		return false, err
	}
	for _, wo := range warehouseOrders {
		if wo.Status != model.WarehouseOrderFulfilled {
			return false, nil
		}
		parents = append(parents, model.ParentRef{Kind: model.ParentWarehouseOrder, ID: wo.ID})
	}

	productionOrders, err := s.repos.ProductionOrders.ListByParent(ctx,
		model.ParentRef{Kind: model.ParentCustomerOrder, ID: order.ID})
	if err != nil {
		return false, err
	}
	for _, po := range productionOrders {
		if po.Status != model.ProductionOrderCompleted {
			return false, nil
		}
		parents = append(parents, model.ParentRef{Kind: model.ParentProductionOrder, ID: po.ID})
	}

	for _, parent := range parents {
		assemblies, err := s.repos.FinalAssemblyOrders.ListByParent(ctx, parent)
		if err != nil {
			return false, err
		}
		for _, fao := range assemblies {
			if fao.Status != model.FinalAssemblyOrderSubmitted {
				return false, nil
			}
		}
	}
	return true, nil
}

// deriveScenario decides the fulfillment path for an order against live
// stock. The returned availability map is keyed by order item id and only
// meaningful for the stock-driven scenarios.
func (s *Service) deriveScenario(ctx context.Context, order *model.CustomerOrder) (model.TriggerScenario, map[uuid.UUID]bool) {
	threshold := s.cache.LotSizeThreshold(ctx)
	if order.TotalQuantity() >= threshold {
		return model.ScenarioProductionPlanning, nil
	}

	availability := make(map[uuid.UUID]bool, len(order.Items))
	open, available := 0, 0
	for _, item := range order.Items {
		remaining := item.Quantity - item.FulfilledQuantity
		if remaining <= 0 {
			continue
		}
		open++
		inStock, err := s.inventory.CheckStock(ctx, order.WorkstationID, item.ItemID, remaining)
		if err != nil {
			// an unreachable inventory never blocks the flow; the item is
			// treated as out of stock and the failure is audited
			s.reportCollaboratorFailure(ctx, model.SourceCustomerOrder, order.ID, "inventory", err)
			inStock = false
		}
		availability[item.ID] = inStock
		if inStock {
			available++
		}
	}

	switch {
	case open == 0 || available == open:
		return model.ScenarioDirectFulfillment, availability
	case available == 0:
		return model.ScenarioWarehouseOrderNeeded, availability
	default:
		return model.ScenarioPartialFulfillment, availability
	}
}

// reevaluateWorkstation refreshes the predicted scenario of every other
// confirmed order competing for the same workstation's stock.
func (s *Service) reevaluateWorkstation(ctx context.Context, workstationID int, exclude uuid.UUID) {
	orders, err := s.repos.CustomerOrders.ListByWorkstationAndStatus(ctx, workstationID, model.CustomerOrderConfirmed)
	if err != nil {
		log.Error().Err(err).Int("workstation_id", workstationID).
			Msg("failed to list confirmed orders for re-evaluation")
		return
	}
	for i := range orders {
		order := &orders[i]
		if order.ID == exclude {
			continue
		}
		s.refreshPrediction(ctx, order)
	}
}

// ReevaluateConfirmedOrders refreshes scenario predictions of every confirmed
// order at the plant warehouse. Run periodically by the worker.
func (s *Service) ReevaluateConfirmedOrders(ctx context.Context) error {
	orders, err := s.repos.CustomerOrders.ListByWorkstationAndStatus(ctx,
		model.WorkstationPlantWarehouse, model.CustomerOrderConfirmed)
	if err != nil {
		return errors.Wrap(err, "failed to list confirmed orders")
	}
	for i := range orders {
		s.refreshPrediction(ctx, &orders[i])
	}
	return nil
}

func (s *Service) refreshPrediction(ctx context.Context, order *model.CustomerOrder) {
	predicted, _ := s.deriveScenario(ctx, order)
	if predicted == model.ScenarioPartialFulfillment {
		predicted = model.ScenarioWarehouseOrderNeeded
	}
	if predicted == order.TriggerScenario {
		return
	}
	previous := order.TriggerScenario
	order.TriggerScenario = predicted
	if err := s.repos.CustomerOrders.Save(ctx, order); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).
			Msg("failed to persist re-evaluated scenario")
		return
	}
	s.recordAudit(ctx, model.Audit(model.SourceCustomerOrder, order.ID, model.EventScenarioSelected,
		fmt.Sprintf("predicted scenario changed from %s to %s", previous, predicted)))
}
