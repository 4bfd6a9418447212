package model

// Operation names a state machine operation. Transitions not present in the
// tables below are rejected, never coerced.
type Operation string

const (
	OpConfirm       Operation = "confirm"
	OpFulfill       Operation = "fulfill"
	OpComplete      Operation = "complete"
	OpCancel        Operation = "cancel"
	OpReopen        Operation = "reopen"
	OpSchedule      Operation = "schedule"
	OpDispatch      Operation = "dispatch"
	OpStart         Operation = "start"
	OpHalt          Operation = "halt"
	OpResume        Operation = "resume"
	OpWaitForParts  Operation = "wait_for_parts"
	OpPartsSupplied Operation = "parts_supplied"
	OpSubmit        Operation = "submit"
	OpReject        Operation = "reject"
	OpModulesReady  Operation = "modules_ready"
)

// CustomerOrderStatus is the lifecycle status of a customer order
type CustomerOrderStatus string

const (
	CustomerOrderPending    CustomerOrderStatus = "PENDING"
	CustomerOrderConfirmed  CustomerOrderStatus = "CONFIRMED"
	CustomerOrderProcessing CustomerOrderStatus = "PROCESSING"
	CustomerOrderCompleted  CustomerOrderStatus = "COMPLETED"
	CustomerOrderCancelled  CustomerOrderStatus = "CANCELLED"
)

// customerOrderTransitions is the closed transition table for customer
// orders. fulfill branches on the selected scenario, reopen is the cascade
// advance back to CONFIRMED once all final assembly orders are submitted.
var customerOrderTransitions = map[CustomerOrderStatus]map[Operation][]CustomerOrderStatus{
	CustomerOrderPending: {
		OpConfirm: {CustomerOrderConfirmed},
		OpCancel:  {CustomerOrderCancelled},
	},
	CustomerOrderConfirmed: {
		OpFulfill: {CustomerOrderCompleted, CustomerOrderProcessing, CustomerOrderCancelled},
		OpCancel:  {CustomerOrderCancelled},
	},
	CustomerOrderProcessing: {
		OpReopen:   {CustomerOrderConfirmed},
		OpComplete: {CustomerOrderCompleted},
		OpCancel:   {CustomerOrderCancelled},
	},
}

// WarehouseOrderStatus is the lifecycle status of a warehouse order
type WarehouseOrderStatus string

const (
	WarehouseOrderPending           WarehouseOrderStatus = "PENDING"
	WarehouseOrderConfirmed         WarehouseOrderStatus = "CONFIRMED"
	WarehouseOrderPendingProduction WarehouseOrderStatus = "PENDING_PRODUCTION"
	WarehouseOrderModulesReady      WarehouseOrderStatus = "MODULES_READY"
	WarehouseOrderProcessing        WarehouseOrderStatus = "PROCESSING"
	WarehouseOrderFulfilled         WarehouseOrderStatus = "FULFILLED"
)

var warehouseOrderTransitions = map[WarehouseOrderStatus]map[Operation][]WarehouseOrderStatus{
	WarehouseOrderPending: {
		OpConfirm: {WarehouseOrderConfirmed},
	},
	WarehouseOrderConfirmed: {
		OpFulfill: {WarehouseOrderFulfilled, WarehouseOrderProcessing, WarehouseOrderPendingProduction},
	},
	WarehouseOrderPendingProduction: {
		OpModulesReady: {WarehouseOrderModulesReady},
	},
	WarehouseOrderProcessing: {
		OpModulesReady: {WarehouseOrderModulesReady},
	},
	WarehouseOrderModulesReady: {
		OpFulfill: {WarehouseOrderFulfilled, WarehouseOrderProcessing},
	},
}

// ProductionOrderStatus is the lifecycle status of a production order
type ProductionOrderStatus string

const (
	ProductionOrderCreated      ProductionOrderStatus = "CREATED"
	ProductionOrderConfirmed    ProductionOrderStatus = "CONFIRMED"
	ProductionOrderScheduled    ProductionOrderStatus = "SCHEDULED"
	ProductionOrderDispatched   ProductionOrderStatus = "DISPATCHED"
	ProductionOrderInProduction ProductionOrderStatus = "IN_PRODUCTION"
	ProductionOrderCompleted    ProductionOrderStatus = "COMPLETED"
	ProductionOrderCancelled    ProductionOrderStatus = "CANCELLED"
)

var productionOrderTransitions = map[ProductionOrderStatus]map[Operation][]ProductionOrderStatus{
	ProductionOrderCreated: {
		OpConfirm: {ProductionOrderConfirmed},
		OpCancel:  {ProductionOrderCancelled},
	},
	ProductionOrderConfirmed: {
		OpSchedule: {ProductionOrderScheduled},
		OpCancel:   {ProductionOrderCancelled},
	},
	ProductionOrderScheduled: {
		OpDispatch: {ProductionOrderDispatched},
		OpCancel:   {ProductionOrderCancelled},
	},
	ProductionOrderDispatched: {
		OpStart:  {ProductionOrderInProduction},
		OpCancel: {ProductionOrderCancelled},
	},
	ProductionOrderInProduction: {
		OpComplete: {ProductionOrderCompleted},
		OpCancel:   {ProductionOrderCancelled},
	},
}

// ControlOrderStatus is the lifecycle status of a control order
type ControlOrderStatus string

const (
	ControlOrderOpen       ControlOrderStatus = "OPEN"
	ControlOrderInProgress ControlOrderStatus = "IN_PROGRESS"
	ControlOrderCompleted  ControlOrderStatus = "COMPLETED"
)

var controlOrderTransitions = map[ControlOrderStatus]map[Operation][]ControlOrderStatus{
	ControlOrderOpen: {
		OpStart: {ControlOrderInProgress},
	},
	ControlOrderInProgress: {
		OpComplete: {ControlOrderCompleted},
	},
}

// WorkstationOrderStatus is the lifecycle status of a workstation order
type WorkstationOrderStatus string

const (
	WorkstationOrderPending         WorkstationOrderStatus = "PENDING"
	WorkstationOrderWaitingForParts WorkstationOrderStatus = "WAITING_FOR_PARTS"
	WorkstationOrderInProgress      WorkstationOrderStatus = "IN_PROGRESS"
	WorkstationOrderHalted          WorkstationOrderStatus = "HALTED"
	WorkstationOrderCompleted       WorkstationOrderStatus = "COMPLETED"
)

var workstationOrderTransitions = map[WorkstationOrderStatus]map[Operation][]WorkstationOrderStatus{
	WorkstationOrderPending: {
		OpStart:        {WorkstationOrderInProgress},
		OpWaitForParts: {WorkstationOrderWaitingForParts},
	},
	WorkstationOrderInProgress: {
		OpComplete:     {WorkstationOrderCompleted},
		OpHalt:         {WorkstationOrderHalted},
		OpWaitForParts: {WorkstationOrderWaitingForParts},
	},
	WorkstationOrderHalted: {
		OpResume: {WorkstationOrderInProgress},
	},
	WorkstationOrderWaitingForParts: {
		OpPartsSupplied: {WorkstationOrderPending, WorkstationOrderInProgress},
	},
}

// FinalAssemblyOrderStatus is the lifecycle status of a final assembly order
type FinalAssemblyOrderStatus string

const (
	FinalAssemblyOrderPending    FinalAssemblyOrderStatus = "PENDING"
	FinalAssemblyOrderInProgress FinalAssemblyOrderStatus = "IN_PROGRESS"
	FinalAssemblyOrderCompleted  FinalAssemblyOrderStatus = "COMPLETED"
	FinalAssemblyOrderSubmitted  FinalAssemblyOrderStatus = "SUBMITTED"
)

var finalAssemblyOrderTransitions = map[FinalAssemblyOrderStatus]map[Operation][]FinalAssemblyOrderStatus{
	FinalAssemblyOrderPending: {
		OpStart: {FinalAssemblyOrderInProgress},
	},
	FinalAssemblyOrderInProgress: {
		OpComplete: {FinalAssemblyOrderCompleted},
	},
	FinalAssemblyOrderCompleted: {
		OpSubmit: {FinalAssemblyOrderSubmitted},
	},
}

// SupplyOrderStatus is the lifecycle status of a supply order
type SupplyOrderStatus string

const (
	SupplyOrderPending   SupplyOrderStatus = "PENDING"
	SupplyOrderFulfilled SupplyOrderStatus = "FULFILLED"
	SupplyOrderRejected  SupplyOrderStatus = "REJECTED"
	SupplyOrderCancelled SupplyOrderStatus = "CANCELLED"
)

var supplyOrderTransitions = map[SupplyOrderStatus]map[Operation][]SupplyOrderStatus{
	SupplyOrderPending: {
		OpFulfill: {SupplyOrderFulfilled},
		OpReject:  {SupplyOrderRejected},
		OpCancel:  {SupplyOrderCancelled},
	},
}

// lookup resolves an operation against a transition table, returning the
// allowed target statuses for error reporting when the target is not legal.
func lookup[S ~string](table map[S]map[Operation][]S, source SourceType, current S, op Operation, to S) error {
	targets, ok := table[current][op]
	if ok {
		for _, t := range targets {
			if t == to {
				return nil
			}
		}
	}
	allowedFrom := make([]string, 0, len(table))
	for from, ops := range table {
		if _, permits := ops[op]; permits {
			allowedFrom = append(allowedFrom, string(from))
		}
	}
	return &InvalidTransitionError{
		Source:    source,
		Current:   string(current),
		Operation: op,
		Allowed:   allowedFrom,
	}
}

func (o *CustomerOrder) transition(op Operation, to CustomerOrderStatus) error {
	if err := lookup(customerOrderTransitions, SourceCustomerOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *WarehouseOrder) transition(op Operation, to WarehouseOrderStatus) error {
	if err := lookup(warehouseOrderTransitions, SourceWarehouseOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *ProductionOrder) transition(op Operation, to ProductionOrderStatus) error {
	if err := lookup(productionOrderTransitions, SourceProductionOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *ControlOrder) transition(op Operation, to ControlOrderStatus) error {
	if err := lookup(controlOrderTransitions, SourceControlOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *WorkstationOrder) transition(op Operation, to WorkstationOrderStatus) error {
	if err := lookup(workstationOrderTransitions, SourceWorkstationOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *FinalAssemblyOrder) transition(op Operation, to FinalAssemblyOrderStatus) error {
	if err := lookup(finalAssemblyOrderTransitions, SourceFinalAssemblyOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

func (o *SupplyOrder) transition(op Operation, to SupplyOrderStatus) error {
	if err := lookup(supplyOrderTransitions, SourceSupplyOrder, o.Status, op, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}
