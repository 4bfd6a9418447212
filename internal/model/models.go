package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Base holds the fields shared by all persisted entities
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Workstation identifiers of the factory layout
const (
	WorkstationManufacturing1     = 1
	WorkstationManufacturing2     = 2
	WorkstationManufacturing3     = 3
	WorkstationAssembly1          = 4
	WorkstationAssembly2          = 5
	WorkstationFinalAssembly      = 6
	WorkstationPlantWarehouse     = 7
	WorkstationModulesSupermarket = 8
	WorkstationPartsSupply        = 9
)

// ItemType classifies an ordered item within the bill of materials hierarchy
type ItemType string

const (
	ItemTypeProduct ItemType = "PRODUCT"
	ItemTypeModule  ItemType = "MODULE"
	ItemTypePart    ItemType = "PART"
)

// Valid reports whether the item type is one of the known values
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeProduct, ItemTypeModule, ItemTypePart:
		return true
	}
	return false
}

// TriggerScenario identifies the fulfillment path selected for an order
type TriggerScenario string

const (
	ScenarioDirectFulfillment    TriggerScenario = "DIRECT_FULFILLMENT"
	ScenarioWarehouseOrderNeeded TriggerScenario = "WAREHOUSE_ORDER_NEEDED"
	ScenarioPartialFulfillment   TriggerScenario = "PARTIAL_FULFILLMENT"
	ScenarioProductionRequired   TriggerScenario = "PRODUCTION_REQUIRED"
	ScenarioProductionPlanning   TriggerScenario = "PRODUCTION_PLANNING"
)

// SourceType identifies the order kind an audit event or cascade refers to
type SourceType string

const (
	SourceCustomerOrder      SourceType = "CUSTOMER_ORDER"
	SourceWarehouseOrder     SourceType = "WAREHOUSE_ORDER"
	SourceProductionOrder    SourceType = "PRODUCTION_ORDER"
	SourceControlOrder       SourceType = "CONTROL_ORDER"
	SourceWorkstationOrder   SourceType = "WORKSTATION_ORDER"
	SourceFinalAssemblyOrder SourceType = "FINAL_ASSEMBLY_ORDER"
	SourceSupplyOrder        SourceType = "SUPPLY_ORDER"
)

// ParentKind discriminates the structural parent of a downstream order
type ParentKind string

const (
	ParentNone            ParentKind = ""
	ParentCustomerOrder   ParentKind = "CUSTOMER_ORDER"
	ParentWarehouseOrder  ParentKind = "WAREHOUSE_ORDER"
	ParentProductionOrder ParentKind = "PRODUCTION_ORDER"
	ParentControlOrder    ParentKind = "CONTROL_ORDER"
)

// ParentRef is a discriminated reference to a structural parent order,
// resolved once at creation time.
type ParentRef struct {
	Kind ParentKind `gorm:"column:kind" json:"kind"`
	ID   uuid.UUID  `gorm:"column:id;type:uuid" json:"id"`
}

// IsZero reports whether no parent is set
func (p ParentRef) IsZero() bool {
	return p.Kind == ParentNone
}

// CustomerOrder is the entry point of the fulfillment flow. It originates at
// the plant warehouse and is decomposed into downstream orders by the
// scenario router.
type CustomerOrder struct {
	Base
	OrderNumber     string              `gorm:"uniqueIndex;not null" json:"order_number"`
	WorkstationID   int                 `gorm:"not null" json:"workstation_id"`
	Status          CustomerOrderStatus `gorm:"not null" json:"status"`
	TriggerScenario TriggerScenario     `json:"trigger_scenario"`
	Notes           string              `json:"notes"`
	Items           []CustomerOrderItem `gorm:"foreignKey:CustomerOrderID;constraint:OnDelete:CASCADE" json:"items"`
	ConfirmedAt     *time.Time          `json:"confirmed_at"`
	CompletedAt     *time.Time          `json:"completed_at"`
}

// CustomerOrderItem is a single line of customer demand
type CustomerOrderItem struct {
	Base
	CustomerOrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_order_id"`
	ItemType          ItemType  `gorm:"not null" json:"item_type"`
	ItemID            int64     `gorm:"not null" json:"item_id"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	FulfilledQuantity int       `gorm:"not null;default:0" json:"fulfilled_quantity"`
}

// TotalQuantity sums the ordered quantity across all items
func (o *CustomerOrder) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// WarehouseOrder carries aggregated module demand toward the modules
// supermarket on behalf of a customer order.
type WarehouseOrder struct {
	Base
	OrderNumber       string               `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerOrderID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"customer_order_id"`
	WorkstationID     int                  `gorm:"not null" json:"workstation_id"`
	Status            WarehouseOrderStatus `gorm:"not null" json:"status"`
	TriggerScenario   TriggerScenario      `json:"trigger_scenario"`
	ProductionOrderID *uuid.UUID           `gorm:"type:uuid" json:"production_order_id"`
	Items             []WarehouseOrderItem `gorm:"foreignKey:WarehouseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// WarehouseOrderItem is aggregated module demand. A module id appears at most
// once per order.
type WarehouseOrderItem struct {
	Base
	WarehouseOrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"warehouse_order_id"`
	ModuleID          int64     `gorm:"not null" json:"module_id"`
	Quantity          int       `gorm:"not null" json:"quantity"`
	FulfilledQuantity int       `gorm:"not null;default:0" json:"fulfilled_quantity"`
}

// ProductionOrder schedules manufacturing of modules that were not in stock
type ProductionOrder struct {
	Base
	OrderNumber           string                `gorm:"uniqueIndex;not null" json:"order_number"`
	Parent                ParentRef             `gorm:"embedded;embeddedPrefix:parent_" json:"parent"`
	ScheduleID            string                `json:"schedule_id"`
	EstimatedDurationSecs int                   `json:"estimated_duration_secs"`
	TargetAt              *time.Time            `json:"target_at"`
	ExpectedAt            *time.Time            `json:"expected_at"`
	Priority              int                   `gorm:"not null;default:0" json:"priority"`
	Status                ProductionOrderStatus `gorm:"not null" json:"status"`
	Items                 []ProductionOrderItem `gorm:"foreignKey:ProductionOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// ProductionOrderItem is one manufacturing line of a production order
type ProductionOrderItem struct {
	Base
	ProductionOrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"production_order_id"`
	ItemType              ItemType  `gorm:"not null" json:"item_type"`
	ItemID                int64     `gorm:"not null" json:"item_id"`
	Quantity              int       `gorm:"not null" json:"quantity"`
	TargetWorkstationType string    `json:"target_workstation_type"`
}

// ControlOrderType splits the control tier into its manufacturing and
// assembly halves
type ControlOrderType string

const (
	ControlOrderProduction ControlOrderType = "PRODUCTION_CONTROL"
	ControlOrderAssembly   ControlOrderType = "ASSEMBLY_CONTROL"
)

// ControlOrder is the workstation-assignment tier above individual
// workstation orders. It tracks completion of its children itself.
type ControlOrder struct {
	Base
	OrderNumber                string             `gorm:"uniqueIndex;not null" json:"order_number"`
	Type                       ControlOrderType   `gorm:"not null" json:"type"`
	ProductionOrderID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"production_order_id"`
	Status                     ControlOrderStatus `gorm:"not null" json:"status"`
	TotalWorkstationOrders     int                `gorm:"not null;default:0" json:"total_workstation_orders"`
	CompletedWorkstationOrders int                `gorm:"not null;default:0" json:"completed_workstation_orders"`
}

// WorkstationOrder is a unit of work assigned to one workstation. The
// manufacturing stations (1-3) and assembly stations (4-5) all share the
// same lifecycle.
type WorkstationOrder struct {
	Base
	OrderNumber      string                  `gorm:"uniqueIndex;not null" json:"order_number"`
	ControlOrderID   uuid.UUID               `gorm:"type:uuid;not null;index" json:"control_order_id"`
	ControlOrderType ControlOrderType        `gorm:"not null" json:"control_order_type"`
	WorkstationID    int                     `gorm:"not null;index" json:"workstation_id"`
	OutputItemID     int64                   `gorm:"not null" json:"output_item_id"`
	OutputItemName   string                  `json:"output_item_name"`
	Quantity         int                     `gorm:"not null" json:"quantity"`
	Status           WorkstationOrderStatus  `gorm:"not null" json:"status"`
	Priority         int                     `gorm:"not null;default:0" json:"priority"`
	SupplyOrderID    *uuid.UUID              `gorm:"type:uuid" json:"supply_order_id"`
	WasStarted       bool                    `gorm:"not null;default:false" json:"was_started"`
	Inputs           []WorkstationOrderInput `gorm:"foreignKey:WorkstationOrderID;constraint:OnDelete:CASCADE" json:"inputs"`
}

// WorkstationOrderInput is a required input part for a workstation order
type WorkstationOrderInput struct {
	Base
	WorkstationOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"workstation_order_id"`
	PartID             int64     `gorm:"not null" json:"part_id"`
	Quantity           int       `gorm:"not null" json:"quantity"`
}

// FinalAssemblyOrder assembles modules into a finished product at the final
// assembly station. Its parent is a warehouse order or a production order,
// never both.
type FinalAssemblyOrder struct {
	Base
	OrderNumber     string                   `gorm:"uniqueIndex;not null" json:"order_number"`
	Parent          ParentRef                `gorm:"embedded;embeddedPrefix:parent_" json:"parent"`
	WorkstationID   int                      `gorm:"not null" json:"workstation_id"`
	OutputProductID int64                    `gorm:"not null" json:"output_product_id"`
	OutputQuantity  int                      `gorm:"not null" json:"output_quantity"`
	Status          FinalAssemblyOrderStatus `gorm:"not null" json:"status"`
	StartedAt       *time.Time               `json:"started_at"`
	CompletedAt     *time.Time               `json:"completed_at"`
	SubmittedAt     *time.Time               `json:"submitted_at"`
}

// SupplyOrder requests raw parts from the parts supply warehouse for a
// blocked workstation.
type SupplyOrder struct {
	Base
	OrderNumber             string            `gorm:"uniqueIndex;not null" json:"order_number"`
	SourceControlOrderID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"source_control_order_id"`
	SourceControlOrderType  ControlOrderType  `gorm:"not null" json:"source_control_order_type"`
	RequestingWorkstationID int               `gorm:"not null" json:"requesting_workstation_id"`
	SupplyWorkstationID     int               `gorm:"not null" json:"supply_workstation_id"`
	Priority                int               `gorm:"not null;default:0" json:"priority"`
	RequestedBy             *time.Time        `json:"requested_by"`
	Status                  SupplyOrderStatus `gorm:"not null" json:"status"`
	Notes                   string            `json:"notes"`
	FulfilledAt             *time.Time        `json:"fulfilled_at"`
	Items                   []SupplyOrderItem `gorm:"foreignKey:SupplyOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// SupplyOrderItem is one requested part line
type SupplyOrderItem struct {
	Base
	SupplyOrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"supply_order_id"`
	PartID            int64     `gorm:"not null" json:"part_id"`
	QuantityRequested int       `gorm:"not null" json:"quantity_requested"`
	QuantitySupplied  int       `gorm:"not null;default:0" json:"quantity_supplied"`
}

// AuditEvent is an immutable record of one order transition or side effect.
// Events are appended, never updated or deleted.
type AuditEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	SourceType SourceType `gorm:"not null;index:idx_audit_source" json:"source_type"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_source" json:"order_id"`
	EventType  EventType  `gorm:"not null" json:"event_type"`
	Message    string     `json:"message"`
}

// WebhookSubscription registers a callback URL for terminal customer order
// events. Event may be a concrete event name or "*".
type WebhookSubscription struct {
	Base
	URL   string `gorm:"not null" json:"url"`
	Event string `gorm:"not null;default:'*'" json:"event"`
}

// OrderSequence backs per-prefix human readable order numbers
type OrderSequence struct {
	Prefix string `gorm:"primaryKey" json:"prefix"`
	Value  int64  `gorm:"not null;default:0" json:"value"`
}

// SetupModels runs the schema migrations for all entities
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&CustomerOrder{},
		&CustomerOrderItem{},
		&WarehouseOrder{},
		&WarehouseOrderItem{},
		&ProductionOrder{},
		&ProductionOrderItem{},
		&ControlOrder{},
		&WorkstationOrder{},
		&WorkstationOrderInput{},
		&FinalAssemblyOrder{},
		&SupplyOrder{},
		&SupplyOrderItem{},
		&AuditEvent{},
		&WebhookSubscription{},
		&OrderSequence{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}
	return nil
}
