package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

func confirmedOrder(items ...model.CustomerOrderItem) *model.CustomerOrder {
	return &model.CustomerOrder{
		Base:          model.Base{ID: uuid.New()},
		OrderNumber:   "CO-000042",
		WorkstationID: model.WorkstationPlantWarehouse,
		Status:        model.CustomerOrderConfirmed,
		Items:         items,
	}
}

func TestDeriveScenarioProductionPlanningAboveThreshold(t *testing.T) {
	inventory := new(MockInventoryGateway)
	svc := newTestService(nil, inventory, nil, 10, t)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 6},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 4},
	)

	scenario, _ := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioProductionPlanning, scenario)
	// lot size routing never consults stock
	inventory.AssertNotCalled(t, "CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeriveScenarioDirectWhenEverythingInStock(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 1).Return(true, nil)

	svc := newTestService(nil, inventory, nil, 10, t)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 1},
	)

	scenario, availability := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioDirectFulfillment, scenario)
	for _, item := range order.Items {
		require.True(t, availability[item.ID])
	}
	inventory.AssertExpectations(t)
}

func TestDeriveScenarioWarehouseWhenNothingInStock(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	svc := newTestService(nil, inventory, nil, 10, t)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
	)

	scenario, _ := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioWarehouseOrderNeeded, scenario)
}

func TestDeriveScenarioPartial(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 3).Return(false, nil)

	svc := newTestService(nil, inventory, nil, 10, t)

	inStock := model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2}
	outOfStock := model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 3}
	order := confirmedOrder(inStock, outOfStock)

	scenario, availability := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioPartialFulfillment, scenario)
	require.True(t, availability[inStock.ID])
	require.False(t, availability[outOfStock.ID])
}

func TestDeriveScenarioSkipsFulfilledItems(t *testing.T) {
	inventory := new(MockInventoryGateway)
	// only the open remainder of the second item is checked
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 1).Return(true, nil)

	svc := newTestService(nil, inventory, nil, 10, t)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2, FulfilledQuantity: 2},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 3, FulfilledQuantity: 2},
	)

	scenario, _ := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioDirectFulfillment, scenario)
	inventory.AssertExpectations(t)
}

func TestDeriveScenarioTreatsInventoryFailureAsOutOfStock(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("connection refused"))

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.AnythingOfType("*model.AuditEvent")).Return(nil)

	repos := &repository.Repositories{Audit: auditRepo}
	svc := newTestService(repos, inventory, nil, 10, t)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 1},
	)

	scenario, _ := svc.deriveScenario(context.Background(), order)
	require.Equal(t, model.ScenarioWarehouseOrderNeeded, scenario)

	// the failure was audited against the order
	auditRepo.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(event *model.AuditEvent) bool {
		return event.EventType == model.EventCollaboratorFailure && event.OrderID == order.ID
	}))
}

func TestConfirmCollapsesPartialPrediction(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)
	inventory.On("CheckStock", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 3).Return(false, nil)

	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 3},
	)
	order.Status = model.CustomerOrderPending

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	coRepo.On("Save", mock.Anything, order).Return(nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, Audit: auditRepo}
	svc := newTestService(repos, inventory, nil, 10, t)

	confirmed, err := svc.ConfirmCustomerOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, model.CustomerOrderConfirmed, confirmed.Status)
	// the prediction only distinguishes direct from not-direct, so a partial
	// forecast is stored as WAREHOUSE_ORDER_NEEDED
	require.Equal(t, model.ScenarioWarehouseOrderNeeded, confirmed.TriggerScenario)
	coRepo.AssertExpectations(t)
}

func TestCreateCustomerOrderAssignsNumberAndDefaults(t *testing.T) {
	seqRepo := new(MockSequenceRepository)
	seqRepo.On("NextOrderNumber", mock.Anything, "CO").Return("CO-000001", nil)

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.CustomerOrder")).Return(nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, Audit: auditRepo, Sequences: seqRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	order, err := svc.CreateCustomerOrder(context.Background(), CreateCustomerOrderInput{
		Items: []CustomerOrderItemInput{
			{ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "CO-000001", order.OrderNumber)
	require.Equal(t, model.WorkstationPlantWarehouse, order.WorkstationID)
	require.Equal(t, model.CustomerOrderPending, order.Status)
	require.Equal(t, order.ID, order.Items[0].CustomerOrderID)
	seqRepo.AssertExpectations(t)
	coRepo.AssertExpectations(t)
}

func TestCompleteRejectedWhileWarehouseOrderOpen(t *testing.T) {
	order := confirmedOrder()
	order.Status = model.CustomerOrderProcessing

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	woRepo := new(MockWarehouseOrderRepository)
	woRepo.On("ListByCustomerOrderID", mock.Anything, order.ID).Return([]model.WarehouseOrder{
		{Base: model.Base{ID: uuid.New()}, CustomerOrderID: order.ID, Status: model.WarehouseOrderConfirmed},
	}, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, WarehouseOrders: woRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	_, err := svc.CompleteCustomerOrder(context.Background(), order.ID)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, model.CustomerOrderProcessing, order.Status)
	coRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompleteRejectedWhileProductionRunning(t *testing.T) {
	order := confirmedOrder()
	order.Status = model.CustomerOrderProcessing

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	woRepo := new(MockWarehouseOrderRepository)
	woRepo.On("ListByCustomerOrderID", mock.Anything, order.ID).Return([]model.WarehouseOrder{}, nil)

	poRepo := new(MockProductionOrderRepository)
	poRepo.On("ListByParent", mock.Anything, model.ParentRef{Kind: model.ParentCustomerOrder, ID: order.ID}).
		Return([]model.ProductionOrder{
			{Base: model.Base{ID: uuid.New()}, Status: model.ProductionOrderInProduction},
		}, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, WarehouseOrders: woRepo, ProductionOrders: poRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	_, err := svc.CompleteCustomerOrder(context.Background(), order.ID)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, model.CustomerOrderProcessing, order.Status)
}

func TestCompleteWhenDownstreamFinished(t *testing.T) {
	order := confirmedOrder()
	order.Status = model.CustomerOrderProcessing

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	coRepo.On("Save", mock.Anything, order).Return(nil)

	warehouseID := uuid.New()
	woRepo := new(MockWarehouseOrderRepository)
	woRepo.On("ListByCustomerOrderID", mock.Anything, order.ID).Return([]model.WarehouseOrder{
		{Base: model.Base{ID: warehouseID}, CustomerOrderID: order.ID, Status: model.WarehouseOrderFulfilled},
	}, nil)

	poRepo := new(MockProductionOrderRepository)
	poRepo.On("ListByParent", mock.Anything, model.ParentRef{Kind: model.ParentCustomerOrder, ID: order.ID}).
		Return([]model.ProductionOrder{}, nil)

	faoRepo := new(MockFinalAssemblyOrderRepository)
	faoRepo.On("ListByParent", mock.Anything, model.ParentRef{Kind: model.ParentWarehouseOrder, ID: warehouseID}).
		Return([]model.FinalAssemblyOrder{
			{Base: model.Base{ID: uuid.New()}, Status: model.FinalAssemblyOrderSubmitted},
		}, nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	hookRepo := new(MockWebhookRepository)
	hookRepo.On("ListByEvent", mock.Anything, model.TerminalEventCompleted).
		Return([]model.WebhookSubscription{}, nil)

	repos := &repository.Repositories{
		CustomerOrders:      coRepo,
		WarehouseOrders:     woRepo,
		ProductionOrders:    poRepo,
		FinalAssemblyOrders: faoRepo,
		Audit:               auditRepo,
		Webhooks:            hookRepo,
	}
	svc := newTestService(repos, nil, nil, 10, t)

	completed, err := svc.CompleteCustomerOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, model.CustomerOrderCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	coRepo.AssertExpectations(t)
	faoRepo.AssertExpectations(t)
}

func TestCreateCustomerOrderRejectsInvalidInput(t *testing.T) {
	svc := newTestService(&repository.Repositories{}, nil, nil, 10, t)

	_, err := svc.CreateCustomerOrder(context.Background(), CreateCustomerOrderInput{
		WorkstationID: model.WorkstationPlantWarehouse,
		Items: []CustomerOrderItemInput{
			{ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: -1},
		},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}
