package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCustomerOrderValidateCollectsViolations(t *testing.T) {
	order := &CustomerOrder{
		WorkstationID: 0,
		Items: []CustomerOrderItem{
			{ItemType: "GADGET", ItemID: -1, Quantity: 0},
		},
	}

	err := order.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// workstation id, item type, item id and quantity are all reported at once
	require.Len(t, verr.Violations, 4)
}

func TestCustomerOrderConfirm(t *testing.T) {
	order := &CustomerOrder{
		Base:          Base{ID: uuid.New()},
		OrderNumber:   "CO-000001",
		WorkstationID: WorkstationPlantWarehouse,
		Status:        CustomerOrderPending,
	}

	effects, err := order.Confirm(ScenarioDirectFulfillment)
	require.NoError(t, err)
	require.Equal(t, CustomerOrderConfirmed, order.Status)
	require.Equal(t, ScenarioDirectFulfillment, order.TriggerScenario)
	require.NotNil(t, order.ConfirmedAt)
	require.Len(t, effects, 1)

	// confirming twice is rejected, the order stays CONFIRMED
	_, err = order.Confirm(ScenarioDirectFulfillment)
	require.True(t, IsInvalidTransition(err))
	require.Equal(t, CustomerOrderConfirmed, order.Status)
}

func TestCustomerOrderFulfillDirectEmitsTerminalEvent(t *testing.T) {
	order := &CustomerOrder{
		Base:          Base{ID: uuid.New()},
		OrderNumber:   "CO-000002",
		WorkstationID: WorkstationPlantWarehouse,
		Status:        CustomerOrderConfirmed,
	}

	effects, err := order.FulfillDirect()
	require.NoError(t, err)
	require.Equal(t, CustomerOrderCompleted, order.Status)
	require.Equal(t, ScenarioDirectFulfillment, order.TriggerScenario)
	require.NotNil(t, order.CompletedAt)

	var sawTerminal, sawReevaluate bool
	for _, e := range effects {
		switch eff := e.(type) {
		case TerminalEventEffect:
			sawTerminal = true
			require.Equal(t, TerminalEventCompleted, eff.Event)
			require.Equal(t, order.ID, eff.OrderID)
		case ReevaluateScenariosEffect:
			sawReevaluate = true
			require.Equal(t, order.WorkstationID, eff.WorkstationID)
			require.Equal(t, order.ID, eff.Exclude)
		}
	}
	require.True(t, sawTerminal)
	require.True(t, sawReevaluate)
}

func TestCustomerOrderReopenOnlyFromProcessing(t *testing.T) {
	order := &CustomerOrder{
		Base:        Base{ID: uuid.New()},
		OrderNumber: "CO-000003",
		Status:      CustomerOrderProcessing,
	}

	_, err := order.Reopen()
	require.NoError(t, err)
	require.Equal(t, CustomerOrderConfirmed, order.Status)
	require.Equal(t, ScenarioDirectFulfillment, order.TriggerScenario)

	// a second reopen attempt from CONFIRMED is rejected
	_, err = order.Reopen()
	require.True(t, IsInvalidTransition(err))
}

func TestCustomerOrderCancelNotAllowedWhenCompleted(t *testing.T) {
	order := &CustomerOrder{
		Base:        Base{ID: uuid.New()},
		OrderNumber: "CO-000004",
		Status:      CustomerOrderCompleted,
	}

	_, err := order.Cancel("changed my mind")
	require.True(t, IsInvalidTransition(err))

	var terr *InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, SourceCustomerOrder, terr.Source)
	require.Equal(t, string(CustomerOrderCompleted), terr.Current)
	require.Equal(t, OpCancel, terr.Operation)
}

func TestCustomerOrderDeletable(t *testing.T) {
	order := &CustomerOrder{Status: CustomerOrderPending}
	require.True(t, order.Deletable())

	order.Status = CustomerOrderConfirmed
	require.False(t, order.Deletable())
}

func TestWarehouseOrderFulfillTargets(t *testing.T) {
	poID := uuid.New()

	// full fulfillment
	order := &WarehouseOrder{Base: Base{ID: uuid.New()}, Status: WarehouseOrderConfirmed}
	_, err := order.MarkFulfilled()
	require.NoError(t, err)
	require.Equal(t, WarehouseOrderFulfilled, order.Status)

	// partial fulfillment links the shortfall production order
	order = &WarehouseOrder{Base: Base{ID: uuid.New()}, Status: WarehouseOrderConfirmed}
	_, err = order.MarkProcessing(poID)
	require.NoError(t, err)
	require.Equal(t, WarehouseOrderProcessing, order.Status)
	require.Equal(t, poID, *order.ProductionOrderID)

	// nothing in stock
	order = &WarehouseOrder{Base: Base{ID: uuid.New()}, Status: WarehouseOrderConfirmed}
	_, err = order.MarkPendingProduction(poID)
	require.NoError(t, err)
	require.Equal(t, WarehouseOrderPendingProduction, order.Status)
}

func TestWarehouseOrderModulesReadyRoundTrip(t *testing.T) {
	order := &WarehouseOrder{Base: Base{ID: uuid.New()}, Status: WarehouseOrderPendingProduction}

	_, err := order.ModulesReady()
	require.NoError(t, err)
	require.Equal(t, WarehouseOrderModulesReady, order.Status)

	// after production the order may be fulfilled or go partial again, but
	// it can never fall back to PENDING_PRODUCTION
	_, err = order.MarkPendingProduction(uuid.New())
	require.True(t, IsInvalidTransition(err))

	_, err = order.MarkFulfilled()
	require.NoError(t, err)
	require.Equal(t, WarehouseOrderFulfilled, order.Status)
}

func TestProductionOrderLifecycle(t *testing.T) {
	order := &ProductionOrder{
		Base:        Base{ID: uuid.New()},
		OrderNumber: "PO-000001",
		Parent:      ParentRef{Kind: ParentCustomerOrder, ID: uuid.New()},
		Status:      ProductionOrderCreated,
	}

	_, err := order.Confirm()
	require.NoError(t, err)

	_, err = order.Schedule("sched-42", 1800, nil)
	require.NoError(t, err)
	require.Equal(t, "sched-42", order.ScheduleID)
	require.Equal(t, 1800, order.EstimatedDurationSecs)

	_, err = order.Dispatch()
	require.NoError(t, err)

	_, err = order.Start()
	require.NoError(t, err)

	effects, err := order.Complete()
	require.NoError(t, err)
	require.Equal(t, ProductionOrderCompleted, order.Status)

	// completion notifies the structural parent
	var notified bool
	for _, e := range effects {
		if eff, ok := e.(NotifyParentEffect); ok {
			notified = true
			require.Equal(t, order.Parent, eff.Parent)
			require.Equal(t, SourceProductionOrder, eff.ChildSource)
		}
	}
	require.True(t, notified)

	// terminal states reject further operations
	_, err = order.Cancel("too late")
	require.True(t, IsInvalidTransition(err))
}

func TestProductionOrderCompleteWithoutParent(t *testing.T) {
	order := &ProductionOrder{
		Base:   Base{ID: uuid.New()},
		Status: ProductionOrderInProduction,
	}

	effects, err := order.Complete()
	require.NoError(t, err)
	for _, e := range effects {
		_, ok := e.(NotifyParentEffect)
		require.False(t, ok)
	}
}

func TestProductionOrderSkippingScheduleIsRejected(t *testing.T) {
	order := &ProductionOrder{Base: Base{ID: uuid.New()}, Status: ProductionOrderConfirmed}

	_, err := order.Dispatch()
	require.True(t, IsInvalidTransition(err))
	require.Equal(t, ProductionOrderConfirmed, order.Status)
}

func TestControlOrderCountsChildrenBeforeCompleting(t *testing.T) {
	order := &ControlOrder{
		Base:                   Base{ID: uuid.New()},
		OrderNumber:            "CTRL-000001",
		ProductionOrderID:      uuid.New(),
		Status:                 ControlOrderInProgress,
		TotalWorkstationOrders: 2,
	}

	effects, err := order.RecordChildCompletion("WSO-000001")
	require.NoError(t, err)
	require.Equal(t, ControlOrderInProgress, order.Status)
	require.Equal(t, 1, order.CompletedWorkstationOrders)
	for _, e := range effects {
		_, ok := e.(NotifyParentEffect)
		require.False(t, ok)
	}

	effects, err = order.RecordChildCompletion("WSO-000002")
	require.NoError(t, err)
	require.Equal(t, ControlOrderCompleted, order.Status)

	var notified bool
	for _, e := range effects {
		if eff, ok := e.(NotifyParentEffect); ok {
			notified = true
			require.Equal(t, ParentProductionOrder, eff.Parent.Kind)
			require.Equal(t, order.ProductionOrderID, eff.Parent.ID)
		}
	}
	require.True(t, notified)
}

func TestWorkstationOrderPartsSuppliedResumesPriorState(t *testing.T) {
	// blocked before any work started: back to PENDING
	order := &WorkstationOrder{
		Base:           Base{ID: uuid.New()},
		ControlOrderID: uuid.New(),
		Status:         WorkstationOrderPending,
	}
	_, err := order.MarkWaitingForParts(uuid.New())
	require.NoError(t, err)

	_, err = order.PartsSupplied()
	require.NoError(t, err)
	require.Equal(t, WorkstationOrderPending, order.Status)

	// blocked mid-work: back to IN_PROGRESS
	order = &WorkstationOrder{
		Base:           Base{ID: uuid.New()},
		ControlOrderID: uuid.New(),
		Status:         WorkstationOrderPending,
	}
	_, err = order.Start()
	require.NoError(t, err)
	require.True(t, order.WasStarted)

	_, err = order.MarkWaitingForParts(uuid.New())
	require.NoError(t, err)

	_, err = order.PartsSupplied()
	require.NoError(t, err)
	require.Equal(t, WorkstationOrderInProgress, order.Status)
}

func TestWorkstationOrderHaltResume(t *testing.T) {
	order := &WorkstationOrder{
		Base:           Base{ID: uuid.New()},
		ControlOrderID: uuid.New(),
		Status:         WorkstationOrderInProgress,
	}

	_, err := order.Halt("tool breakage")
	require.NoError(t, err)
	require.Equal(t, WorkstationOrderHalted, order.Status)

	// a halted order cannot complete before resuming
	_, err = order.Complete()
	require.True(t, IsInvalidTransition(err))

	_, err = order.Resume()
	require.NoError(t, err)

	effects, err := order.Complete()
	require.NoError(t, err)
	require.Equal(t, WorkstationOrderCompleted, order.Status)

	var notified bool
	for _, e := range effects {
		if eff, ok := e.(NotifyParentEffect); ok {
			notified = true
			require.Equal(t, ParentControlOrder, eff.Parent.Kind)
			require.Equal(t, order.ControlOrderID, eff.Parent.ID)
		}
	}
	require.True(t, notified)
}

func TestFinalAssemblyOrderSubmitNotifiesParent(t *testing.T) {
	order := &FinalAssemblyOrder{
		Base:        Base{ID: uuid.New()},
		OrderNumber: "FAO-000001",
		Parent:      ParentRef{Kind: ParentWarehouseOrder, ID: uuid.New()},
		Status:      FinalAssemblyOrderPending,
	}

	// submit straight from PENDING is rejected
	_, err := order.Submit()
	require.True(t, IsInvalidTransition(err))

	_, err = order.Start()
	require.NoError(t, err)
	require.NotNil(t, order.StartedAt)

	_, err = order.Complete()
	require.NoError(t, err)

	effects, err := order.Submit()
	require.NoError(t, err)
	require.Equal(t, FinalAssemblyOrderSubmitted, order.Status)
	require.NotNil(t, order.SubmittedAt)

	var notified bool
	for _, e := range effects {
		if eff, ok := e.(NotifyParentEffect); ok {
			notified = true
			require.Equal(t, order.Parent, eff.Parent)
			require.Equal(t, SourceFinalAssemblyOrder, eff.ChildSource)
		}
	}
	require.True(t, notified)
}

func TestSupplyOrderFulfillSuppliesEveryLine(t *testing.T) {
	order := &SupplyOrder{
		Base:                    Base{ID: uuid.New()},
		OrderNumber:             "SO-000001",
		RequestingWorkstationID: WorkstationManufacturing2,
		SupplyWorkstationID:     WorkstationPartsSupply,
		Status:                  SupplyOrderPending,
		Items: []SupplyOrderItem{
			{PartID: 11, QuantityRequested: 4},
			{PartID: 12, QuantityRequested: 2},
		},
	}

	_, err := order.Fulfill()
	require.NoError(t, err)
	require.Equal(t, SupplyOrderFulfilled, order.Status)
	require.NotNil(t, order.FulfilledAt)
	for _, item := range order.Items {
		require.Equal(t, item.QuantityRequested, item.QuantitySupplied)
	}

	// fulfilled is terminal
	_, err = order.Reject("no stock")
	require.True(t, IsInvalidTransition(err))
}

func TestInvalidTransitionErrorReportsAllowedSources(t *testing.T) {
	order := &SupplyOrder{Base: Base{ID: uuid.New()}, Status: SupplyOrderRejected}

	_, err := order.Cancel("retry")
	var terr *InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, SourceSupplyOrder, terr.Source)
	require.Contains(t, terr.Allowed, string(SupplyOrderPending))
}
