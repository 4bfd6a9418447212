package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

// Order number prefixes per order kind
const (
	prefixCustomerOrder      = "CO"
	prefixWarehouseOrder     = "WO"
	prefixProductionOrder    = "PO"
	prefixControlOrder       = "CTRL"
	prefixWorkstationOrder   = "WSO"
	prefixFinalAssemblyOrder = "FAO"
	prefixSupplyOrder        = "SO"
)

var manufacturingStations = []int{
	model.WorkstationManufacturing1,
	model.WorkstationManufacturing2,
	model.WorkstationManufacturing3,
}

var assemblyStations = []int{
	model.WorkstationAssembly1,
	model.WorkstationAssembly2,
}

// buildWarehouseOrder materializes aggregated module demand as a PENDING
// warehouse order at the modules supermarket.
func buildWarehouseOrder(ctx context.Context, repos *repository.Repositories, customer *model.CustomerOrder, demand map[int64]int) (*model.WarehouseOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixWarehouseOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign warehouse order number")
	}
	order := &model.WarehouseOrder{
		Base:            model.Base{ID: uuid.New()},
		OrderNumber:     number,
		CustomerOrderID: customer.ID,
		WorkstationID:   model.WorkstationModulesSupermarket,
		Status:          model.WarehouseOrderPending,
	}
	for _, moduleID := range sortedItemIDs(demand) {
		order.Items = append(order.Items, model.WarehouseOrderItem{
			Base:             model.Base{ID: uuid.New()},
			WarehouseOrderID: order.ID,
			ModuleID:         moduleID,
			Quantity:         demand[moduleID],
		})
	}
	if err := repos.WarehouseOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildProductionOrder materializes manufacturing demand as a CREATED
// production order tied to its structural parent.
func buildProductionOrder(ctx context.Context, repos *repository.Repositories, parent model.ParentRef, itemType model.ItemType, demand map[int64]int, priority int) (*model.ProductionOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixProductionOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign production order number")
	}
	order := &model.ProductionOrder{
		Base:        model.Base{ID: uuid.New()},
		OrderNumber: number,
		Parent:      parent,
		Priority:    priority,
		Status:      model.ProductionOrderCreated,
	}
	for _, itemID := range sortedItemIDs(demand) {
		order.Items = append(order.Items, model.ProductionOrderItem{
			Base:              model.Base{ID: uuid.New()},
			ProductionOrderID: order.ID,
			ItemType:          itemType,
			ItemID:            itemID,
			Quantity:          demand[itemID],
		})
	}
	if err := repos.ProductionOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildControlOrder opens a control order over a set of workstation orders
func buildControlOrder(ctx context.Context, repos *repository.Repositories, productionOrderID uuid.UUID, orderType model.ControlOrderType, total int) (*model.ControlOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixControlOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign control order number")
	}
	order := &model.ControlOrder{
		Base:                   model.Base{ID: uuid.New()},
		OrderNumber:            number,
		Type:                   orderType,
		ProductionOrderID:      productionOrderID,
		Status:                 model.ControlOrderOpen,
		TotalWorkstationOrders: total,
	}
	if err := repos.ControlOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildWorkstationOrder assigns one production order line to a workstation
func (s *Service) buildWorkstationOrder(ctx context.Context, repos *repository.Repositories, control *model.ControlOrder, workstationID int, item model.ProductionOrderItem, priority int) (*model.WorkstationOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixWorkstationOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign workstation order number")
	}

	name, err := s.bom.LookupName(ctx, item.ItemType, item.ItemID)
	if err != nil {
		// the name is cosmetic; production proceeds without it
		log.Warn().Err(err).Int64("item_id", item.ItemID).Msg("item name lookup failed")
		name = ""
	}

	order := &model.WorkstationOrder{
		Base:             model.Base{ID: uuid.New()},
		OrderNumber:      number,
		ControlOrderID:   control.ID,
		ControlOrderType: control.Type,
		WorkstationID:    workstationID,
		OutputItemID:     item.ItemID,
		OutputItemName:   name,
		Quantity:         item.Quantity,
		Status:           model.WorkstationOrderPending,
		Priority:         priority,
	}

	if control.Type == model.ControlOrderProduction {
		parts, err := s.aggregatePartDemand(ctx, item.ItemID, item.Quantity)
		if err != nil {
			return nil, err
		}
		for _, partID := range sortedItemIDs(parts) {
			order.Inputs = append(order.Inputs, model.WorkstationOrderInput{
				Base:               model.Base{ID: uuid.New()},
				WorkstationOrderID: order.ID,
				PartID:             partID,
				Quantity:           parts[partID],
			})
		}
	}

	if err := repos.WorkstationOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildFinalAssemblyOrder opens a final assembly order for one delivered line
func buildFinalAssemblyOrder(ctx context.Context, repos *repository.Repositories, parent model.ParentRef, outputID int64, quantity int) (*model.FinalAssemblyOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixFinalAssemblyOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign final assembly order number")
	}
	order := &model.FinalAssemblyOrder{
		Base:            model.Base{ID: uuid.New()},
		OrderNumber:     number,
		Parent:          parent,
		WorkstationID:   model.WorkstationFinalAssembly,
		OutputProductID: outputID,
		OutputQuantity:  quantity,
		Status:          model.FinalAssemblyOrderPending,
	}
	if err := repos.FinalAssemblyOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildSupplyOrder requests the missing input parts of a blocked workstation
// order from the parts supply warehouse.
func buildSupplyOrder(ctx context.Context, repos *repository.Repositories, wso *model.WorkstationOrder) (*model.SupplyOrder, error) {
	number, err := repos.Sequences.NextOrderNumber(ctx, prefixSupplyOrder)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign supply order number")
	}
	order := &model.SupplyOrder{
		Base:                    model.Base{ID: uuid.New()},
		OrderNumber:             number,
		SourceControlOrderID:    wso.ControlOrderID,
		SourceControlOrderType:  wso.ControlOrderType,
		RequestingWorkstationID: wso.WorkstationID,
		SupplyWorkstationID:     model.WorkstationPartsSupply,
		Priority:                wso.Priority,
		Status:                  model.SupplyOrderPending,
		Notes:                   fmt.Sprintf("parts for workstation order %s", wso.OrderNumber),
	}
	for _, input := range wso.Inputs {
		order.Items = append(order.Items, model.SupplyOrderItem{
			Base:              model.Base{ID: uuid.New()},
			SupplyOrderID:     order.ID,
			PartID:            input.PartID,
			QuantityRequested: input.Quantity,
		})
	}
	if err := repos.SupplyOrders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
