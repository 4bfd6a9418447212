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

func TestFulfillRequiresConfirmedOrder(t *testing.T) {
	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 1},
	)
	order.Status = model.CustomerOrderPending

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	_, err := svc.FulfillCustomerOrder(context.Background(), order.ID)
	require.True(t, model.IsInvalidTransition(err))
}

func TestFulfillDirectDebitsEveryLineAndCompletes(t *testing.T) {
	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 1},
	)

	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	inventory.On("Debit", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)
	inventory.On("Debit", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 1).Return(true, nil)

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	coRepo.On("Save", mock.Anything, order).Return(nil)
	// the completion effect re-evaluates competing confirmed orders
	coRepo.On("ListByWorkstationAndStatus", mock.Anything, order.WorkstationID, model.CustomerOrderConfirmed).
		Return([]model.CustomerOrder{}, nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	whRepo := new(MockWebhookRepository)
	whRepo.On("ListByEvent", mock.Anything, model.TerminalEventCompleted).
		Return([]model.WebhookSubscription{}, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, Audit: auditRepo, Webhooks: whRepo}
	svc := newTestService(repos, inventory, nil, 10, t)

	fulfilled, err := svc.FulfillCustomerOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, model.CustomerOrderCompleted, fulfilled.Status)
	require.Equal(t, model.ScenarioDirectFulfillment, fulfilled.TriggerScenario)
	for _, item := range fulfilled.Items {
		require.Equal(t, item.Quantity, item.FulfilledQuantity)
	}
	inventory.AssertExpectations(t)
}

func TestFulfillDirectDebitFailureCompensatesAndCancels(t *testing.T) {
	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 1},
	)

	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	inventory.On("Debit", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)
	// the second line raced away between check and debit
	inventory.On("Debit", mock.Anything, model.WorkstationPlantWarehouse, int64(2), 1).Return(false, nil)
	inventory.On("Credit", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2).Return(true, nil)

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	coRepo.On("Save", mock.Anything, order).Return(nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	whRepo := new(MockWebhookRepository)
	whRepo.On("ListByEvent", mock.Anything, model.TerminalEventCancelled).
		Return([]model.WebhookSubscription{}, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo, Audit: auditRepo, Webhooks: whRepo}
	svc := newTestService(repos, inventory, nil, 10, t)

	cancelled, err := svc.FulfillCustomerOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, model.CustomerOrderCancelled, cancelled.Status)

	// the first debit was credited back
	inventory.AssertCalled(t, "Credit", mock.Anything, model.WorkstationPlantWarehouse, int64(1), 2)
}

func TestCompensateDebitsCreditsEveryRecordedLine(t *testing.T) {
	inventory := new(MockInventoryGateway)
	inventory.On("Credit", mock.Anything, model.WorkstationModulesSupermarket, int64(10), 3).Return(true, nil)
	// one credit failing must not stop the remaining lines
	inventory.On("Credit", mock.Anything, model.WorkstationModulesSupermarket, int64(11), 2).
		Return(false, errors.New("inventory down"))
	inventory.On("Credit", mock.Anything, model.WorkstationModulesSupermarket, int64(12), 1).Return(true, nil)

	svc := newTestService(nil, inventory, nil, 10, t)

	svc.compensateDebits(context.Background(), model.WorkstationModulesSupermarket, "WO-000001", []stockDebit{
		{ItemID: 10, Quantity: 3},
		{ItemID: 11, Quantity: 2},
		{ItemID: 12, Quantity: 1},
	})
	inventory.AssertExpectations(t)
}

func TestFulfillViaWarehouseRejectsProductWithoutBOM(t *testing.T) {
	order := confirmedOrder(
		model.CustomerOrderItem{Base: model.Base{ID: uuid.New()}, ItemType: model.ItemTypeProduct, ItemID: 5, Quantity: 2},
	)

	inventory := new(MockInventoryGateway)
	inventory.On("CheckStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	bom := new(MockBOMResolver)
	bom.On("ExplodeProduct", mock.Anything, int64(5), 2).Return(map[int64]int{}, nil)

	coRepo := new(MockCustomerOrderRepository)
	coRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	repos := &repository.Repositories{CustomerOrders: coRepo}
	svc := newTestService(repos, inventory, bom, 10, t)

	_, err := svc.FulfillCustomerOrder(context.Background(), order.ID)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	// the order was never moved out of CONFIRMED and nothing was debited
	require.Equal(t, model.CustomerOrderConfirmed, order.Status)
	inventory.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
