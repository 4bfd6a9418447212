package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The named operations below are the only way order statuses change. Each
// operation validates against the transition table, mutates the aggregate,
// and returns the side effects the caller must execute after commit.

// Validate checks a customer order before creation, collecting all
// violations.
func (o *CustomerOrder) Validate() error {
	v := NewValidationError()
	if o.WorkstationID <= 0 {
		v.Violation("workstation id must be positive, got %d", o.WorkstationID)
	}
	if len(o.Items) == 0 {
		v.Violation("order must contain at least one item")
	}
	for i, item := range o.Items {
		if !item.ItemType.Valid() {
			v.Violation("item %d: invalid item type %q", i, item.ItemType)
		}
		if item.ItemID <= 0 {
			v.Violation("item %d: item id must be positive, got %d", i, item.ItemID)
		}
		if item.Quantity <= 0 {
			v.Violation("item %d: quantity must be positive, got %d", i, item.Quantity)
		}
	}
	if v.HasViolations() {
		return v
	}
	return nil
}

// Confirm moves a pending order to CONFIRMED and records the scenario that
// would apply at this instant. The recorded scenario is advisory; fulfill
// re-derives it.
func (o *CustomerOrder) Confirm(predicted TriggerScenario) ([]Effect, error) {
	if err := o.transition(OpConfirm, CustomerOrderConfirmed); err != nil {
		return nil, err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	o.TriggerScenario = predicted
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventConfirmed,
			fmt.Sprintf("order %s confirmed, predicted scenario %s", o.OrderNumber, predicted)),
	}, nil
}

// FulfillDirect completes the order after every item was debited from stock
func (o *CustomerOrder) FulfillDirect() ([]Effect, error) {
	if err := o.transition(OpFulfill, CustomerOrderCompleted); err != nil {
		return nil, err
	}
	now := time.Now()
	o.CompletedAt = &now
	o.TriggerScenario = ScenarioDirectFulfillment
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventCompleted,
			fmt.Sprintf("order %s fulfilled directly from stock at workstation %d", o.OrderNumber, o.WorkstationID)),
		TerminalEventEffect{Event: TerminalEventCompleted, OrderID: o.ID, OrderNumber: o.OrderNumber},
		ReevaluateScenariosEffect{WorkstationID: o.WorkstationID, Exclude: o.ID},
	}, nil
}

// FulfillDownstream marks the order PROCESSING while downstream orders run
func (o *CustomerOrder) FulfillDownstream(scenario TriggerScenario) ([]Effect, error) {
	if err := o.transition(OpFulfill, CustomerOrderProcessing); err != nil {
		return nil, err
	}
	o.TriggerScenario = scenario
	effects := []Effect{
		Audit(SourceCustomerOrder, o.ID, EventProcessing,
			fmt.Sprintf("order %s routed to scenario %s", o.OrderNumber, scenario)),
	}
	if scenario == ScenarioPartialFulfillment {
		effects = append(effects, ReevaluateScenariosEffect{WorkstationID: o.WorkstationID, Exclude: o.ID})
	}
	return effects, nil
}

// FulfillFailed cancels the order after a debit failure. A half-debited
// order is never left looking completed.
func (o *CustomerOrder) FulfillFailed(reason string) ([]Effect, error) {
	if err := o.transition(OpFulfill, CustomerOrderCancelled); err != nil {
		return nil, err
	}
	o.Notes = appendNote(o.Notes, reason)
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventCancelled,
			fmt.Sprintf("order %s cancelled during fulfillment: %s", o.OrderNumber, reason)),
		TerminalEventEffect{Event: TerminalEventCancelled, OrderID: o.ID, OrderNumber: o.OrderNumber},
	}, nil
}

// Complete finishes a processing order once every derived final assembly
// order is submitted
func (o *CustomerOrder) Complete() ([]Effect, error) {
	if err := o.transition(OpComplete, CustomerOrderCompleted); err != nil {
		return nil, err
	}
	now := time.Now()
	o.CompletedAt = &now
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventCompleted,
			fmt.Sprintf("order %s completed", o.OrderNumber)),
		TerminalEventEffect{Event: TerminalEventCompleted, OrderID: o.ID, OrderNumber: o.OrderNumber},
	}, nil
}

// Reopen advances a processing order back to CONFIRMED after the cascade
// determined all derived final assembly orders are submitted and stock has
// arrived at the plant warehouse.
func (o *CustomerOrder) Reopen() ([]Effect, error) {
	if err := o.transition(OpReopen, CustomerOrderConfirmed); err != nil {
		return nil, err
	}
	o.TriggerScenario = ScenarioDirectFulfillment
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventCascadeAdvanced,
			fmt.Sprintf("order %s advanced to CONFIRMED, stock replenished for direct fulfillment", o.OrderNumber)),
	}, nil
}

// Cancel aborts the order. Not permitted once COMPLETED.
func (o *CustomerOrder) Cancel(reason string) ([]Effect, error) {
	if err := o.transition(OpCancel, CustomerOrderCancelled); err != nil {
		return nil, err
	}
	o.Notes = appendNote(o.Notes, reason)
	return []Effect{
		Audit(SourceCustomerOrder, o.ID, EventCancelled,
			fmt.Sprintf("order %s cancelled: %s", o.OrderNumber, reason)),
		TerminalEventEffect{Event: TerminalEventCancelled, OrderID: o.ID, OrderNumber: o.OrderNumber},
	}, nil
}

// Deletable reports whether the order may be physically deleted
func (o *CustomerOrder) Deletable() bool {
	return o.Status == CustomerOrderPending
}

// Confirm fixes the authoritative trigger scenario of a warehouse order
// based on module stock at the fulfilling workstation.
func (o *WarehouseOrder) Confirm(scenario TriggerScenario) ([]Effect, error) {
	if err := o.transition(OpConfirm, WarehouseOrderConfirmed); err != nil {
		return nil, err
	}
	o.TriggerScenario = scenario
	return []Effect{
		Audit(SourceWarehouseOrder, o.ID, EventConfirmed,
			fmt.Sprintf("warehouse order %s confirmed, scenario %s", o.OrderNumber, scenario)),
	}, nil
}

// MarkFulfilled records that every module line was debited and handed to
// final assembly
func (o *WarehouseOrder) MarkFulfilled() ([]Effect, error) {
	if err := o.transition(OpFulfill, WarehouseOrderFulfilled); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWarehouseOrder, o.ID, EventFulfilled,
			fmt.Sprintf("warehouse order %s fulfilled", o.OrderNumber)),
	}, nil
}

// MarkProcessing records a partial fulfillment with a production order
// covering the shortfall
func (o *WarehouseOrder) MarkProcessing(productionOrderID uuid.UUID) ([]Effect, error) {
	if err := o.transition(OpFulfill, WarehouseOrderProcessing); err != nil {
		return nil, err
	}
	o.ProductionOrderID = &productionOrderID
	return []Effect{
		Audit(SourceWarehouseOrder, o.ID, EventProcessing,
			fmt.Sprintf("warehouse order %s partially fulfilled, shortfall in production", o.OrderNumber)),
	}, nil
}

// MarkPendingProduction records that no module was available and the whole
// demand went to production
func (o *WarehouseOrder) MarkPendingProduction(productionOrderID uuid.UUID) ([]Effect, error) {
	if err := o.transition(OpFulfill, WarehouseOrderPendingProduction); err != nil {
		return nil, err
	}
	o.ProductionOrderID = &productionOrderID
	return []Effect{
		Audit(SourceWarehouseOrder, o.ID, EventProcessing,
			fmt.Sprintf("warehouse order %s awaiting production", o.OrderNumber)),
	}, nil
}

// ModulesReady records completion of the linked production order; the order
// becomes fulfillable again
func (o *WarehouseOrder) ModulesReady() ([]Effect, error) {
	if err := o.transition(OpModulesReady, WarehouseOrderModulesReady); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWarehouseOrder, o.ID, EventModulesReady,
			fmt.Sprintf("warehouse order %s modules ready for fulfillment", o.OrderNumber)),
	}, nil
}

// Confirm accepts a created production order
func (o *ProductionOrder) Confirm() ([]Effect, error) {
	if err := o.transition(OpConfirm, ProductionOrderConfirmed); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceProductionOrder, o.ID, EventConfirmed,
			fmt.Sprintf("production order %s confirmed", o.OrderNumber)),
	}, nil
}

// Schedule stores the external schedule linkage returned by the production
// scheduler
func (o *ProductionOrder) Schedule(scheduleID string, estimatedDurationSecs int, expectedAt *time.Time) ([]Effect, error) {
	if err := o.transition(OpSchedule, ProductionOrderScheduled); err != nil {
		return nil, err
	}
	o.ScheduleID = scheduleID
	o.EstimatedDurationSecs = estimatedDurationSecs
	o.ExpectedAt = expectedAt
	return []Effect{
		Audit(SourceProductionOrder, o.ID, EventScheduled,
			fmt.Sprintf("production order %s scheduled as %s", o.OrderNumber, scheduleID)),
	}, nil
}

// Dispatch releases the order to the workstations
func (o *ProductionOrder) Dispatch() ([]Effect, error) {
	if err := o.transition(OpDispatch, ProductionOrderDispatched); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceProductionOrder, o.ID, EventDispatched,
			fmt.Sprintf("production order %s dispatched to workstations", o.OrderNumber)),
	}, nil
}

// Start records first workstation activity
func (o *ProductionOrder) Start() ([]Effect, error) {
	if err := o.transition(OpStart, ProductionOrderInProduction); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceProductionOrder, o.ID, EventStarted,
			fmt.Sprintf("production order %s in production", o.OrderNumber)),
	}, nil
}

// Complete finishes production and notifies the structural parent
func (o *ProductionOrder) Complete() ([]Effect, error) {
	if err := o.transition(OpComplete, ProductionOrderCompleted); err != nil {
		return nil, err
	}
	effects := []Effect{
		Audit(SourceProductionOrder, o.ID, EventCompleted,
			fmt.Sprintf("production order %s completed", o.OrderNumber)),
	}
	if !o.Parent.IsZero() {
		effects = append(effects, NotifyParentEffect{
			Parent:      o.Parent,
			ChildSource: SourceProductionOrder,
			ChildID:     o.ID,
			ChildNumber: o.OrderNumber,
		})
	}
	return effects, nil
}

// Cancel aborts the production order before completion
func (o *ProductionOrder) Cancel(reason string) ([]Effect, error) {
	if err := o.transition(OpCancel, ProductionOrderCancelled); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceProductionOrder, o.ID, EventCancelled,
			fmt.Sprintf("production order %s cancelled: %s", o.OrderNumber, reason)),
	}, nil
}

// Start moves the control order into progress on first child activity
func (o *ControlOrder) Start() ([]Effect, error) {
	if err := o.transition(OpStart, ControlOrderInProgress); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceControlOrder, o.ID, EventStarted,
			fmt.Sprintf("control order %s in progress", o.OrderNumber)),
	}, nil
}

// RecordChildCompletion counts one completed workstation order. When the
// last child completes, the control order completes and notifies its
// production order.
func (o *ControlOrder) RecordChildCompletion(childNumber string) ([]Effect, error) {
	o.CompletedWorkstationOrders++
	effects := []Effect{
		Audit(SourceControlOrder, o.ID, EventCascadeAdvanced,
			fmt.Sprintf("control order %s: workstation order %s completed (%d/%d)",
				o.OrderNumber, childNumber, o.CompletedWorkstationOrders, o.TotalWorkstationOrders)),
	}
	if o.CompletedWorkstationOrders < o.TotalWorkstationOrders {
		return effects, nil
	}
	if err := o.transition(OpComplete, ControlOrderCompleted); err != nil {
		return nil, err
	}
	effects = append(effects,
		Audit(SourceControlOrder, o.ID, EventCompleted,
			fmt.Sprintf("control order %s completed", o.OrderNumber)),
		NotifyParentEffect{
			Parent:      ParentRef{Kind: ParentProductionOrder, ID: o.ProductionOrderID},
			ChildSource: SourceControlOrder,
			ChildID:     o.ID,
			ChildNumber: o.OrderNumber,
		},
	)
	return effects, nil
}

// Start begins work at the workstation
func (o *WorkstationOrder) Start() ([]Effect, error) {
	if err := o.transition(OpStart, WorkstationOrderInProgress); err != nil {
		return nil, err
	}
	o.WasStarted = true
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventStarted,
			fmt.Sprintf("workstation order %s started at workstation %d", o.OrderNumber, o.WorkstationID)),
	}, nil
}

// Halt pauses an in-progress order
func (o *WorkstationOrder) Halt(reason string) ([]Effect, error) {
	if err := o.transition(OpHalt, WorkstationOrderHalted); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventHalted,
			fmt.Sprintf("workstation order %s halted: %s", o.OrderNumber, reason)),
	}, nil
}

// Resume continues a halted order
func (o *WorkstationOrder) Resume() ([]Effect, error) {
	if err := o.transition(OpResume, WorkstationOrderInProgress); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventResumed,
			fmt.Sprintf("workstation order %s resumed", o.OrderNumber)),
	}, nil
}

// MarkWaitingForParts blocks the order on a supply order
func (o *WorkstationOrder) MarkWaitingForParts(supplyOrderID uuid.UUID) ([]Effect, error) {
	if err := o.transition(OpWaitForParts, WorkstationOrderWaitingForParts); err != nil {
		return nil, err
	}
	o.SupplyOrderID = &supplyOrderID
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventWaitingForParts,
			fmt.Sprintf("workstation order %s waiting for parts, supply order %s", o.OrderNumber, supplyOrderID)),
	}, nil
}

// PartsSupplied unblocks the order, returning it to its prior runnable
// state
func (o *WorkstationOrder) PartsSupplied() ([]Effect, error) {
	target := WorkstationOrderPending
	if o.WasStarted {
		target = WorkstationOrderInProgress
	}
	if err := o.transition(OpPartsSupplied, target); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventPartsSupplied,
			fmt.Sprintf("workstation order %s parts supplied, resuming as %s", o.OrderNumber, target)),
	}, nil
}

// Complete finishes the workstation order and notifies its control order.
// The produced item credit is performed by the service alongside the
// transition.
func (o *WorkstationOrder) Complete() ([]Effect, error) {
	if err := o.transition(OpComplete, WorkstationOrderCompleted); err != nil {
		return nil, err
	}
	return []Effect{
		Audit(SourceWorkstationOrder, o.ID, EventCompleted,
			fmt.Sprintf("workstation order %s completed at workstation %d", o.OrderNumber, o.WorkstationID)),
		NotifyParentEffect{
			Parent:      ParentRef{Kind: ParentControlOrder, ID: o.ControlOrderID},
			ChildSource: SourceWorkstationOrder,
			ChildID:     o.ID,
			ChildNumber: o.OrderNumber,
		},
	}, nil
}

// Start begins final assembly
func (o *FinalAssemblyOrder) Start() ([]Effect, error) {
	if err := o.transition(OpStart, FinalAssemblyOrderInProgress); err != nil {
		return nil, err
	}
	now := time.Now()
	o.StartedAt = &now
	return []Effect{
		Audit(SourceFinalAssemblyOrder, o.ID, EventStarted,
			fmt.Sprintf("final assembly order %s started", o.OrderNumber)),
	}, nil
}

// Complete finishes assembling the product
func (o *FinalAssemblyOrder) Complete() ([]Effect, error) {
	if err := o.transition(OpComplete, FinalAssemblyOrderCompleted); err != nil {
		return nil, err
	}
	now := time.Now()
	o.CompletedAt = &now
	return []Effect{
		Audit(SourceFinalAssemblyOrder, o.ID, EventCompleted,
			fmt.Sprintf("final assembly order %s completed", o.OrderNumber)),
	}, nil
}

// Submit hands the finished product to the plant warehouse and triggers the
// last-child cascade toward the customer order
func (o *FinalAssemblyOrder) Submit() ([]Effect, error) {
	if err := o.transition(OpSubmit, FinalAssemblyOrderSubmitted); err != nil {
		return nil, err
	}
	now := time.Now()
	o.SubmittedAt = &now
	return []Effect{
		Audit(SourceFinalAssemblyOrder, o.ID, EventSubmitted,
			fmt.Sprintf("final assembly order %s submitted to plant warehouse", o.OrderNumber)),
		NotifyParentEffect{
			Parent:      o.Parent,
			ChildSource: SourceFinalAssemblyOrder,
			ChildID:     o.ID,
			ChildNumber: o.OrderNumber,
		},
	}, nil
}

// Fulfill supplies every requested line in full
func (o *SupplyOrder) Fulfill() ([]Effect, error) {
	if err := o.transition(OpFulfill, SupplyOrderFulfilled); err != nil {
		return nil, err
	}
	now := time.Now()
	o.FulfilledAt = &now
	for i := range o.Items {
		o.Items[i].QuantitySupplied = o.Items[i].QuantityRequested
	}
	return []Effect{
		Audit(SourceSupplyOrder, o.ID, EventFulfilled,
			fmt.Sprintf("supply order %s fulfilled for workstation %d", o.OrderNumber, o.RequestingWorkstationID)),
	}, nil
}

// Reject declines the supply request with a reason
func (o *SupplyOrder) Reject(reason string) ([]Effect, error) {
	if err := o.transition(OpReject, SupplyOrderRejected); err != nil {
		return nil, err
	}
	o.Notes = appendNote(o.Notes, reason)
	return []Effect{
		Audit(SourceSupplyOrder, o.ID, EventRejected,
			fmt.Sprintf("supply order %s rejected: %s", o.OrderNumber, reason)),
	}, nil
}

// Cancel withdraws the supply request with a reason
func (o *SupplyOrder) Cancel(reason string) ([]Effect, error) {
	if err := o.transition(OpCancel, SupplyOrderCancelled); err != nil {
		return nil, err
	}
	o.Notes = appendNote(o.Notes, reason)
	return []Effect{
		Audit(SourceSupplyOrder, o.ID, EventCancelled,
			fmt.Sprintf("supply order %s cancelled: %s", o.OrderNumber, reason)),
	}, nil
}

func appendNote(notes, note string) string {
	if note == "" {
		return notes
	}
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
