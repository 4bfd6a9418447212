package model

import "github.com/google/uuid"

// EventType labels an audit event
type EventType string

const (
	EventCreated             EventType = "CREATED"
	EventConfirmed           EventType = "CONFIRMED"
	EventScenarioSelected    EventType = "SCENARIO_SELECTED"
	EventFulfilled           EventType = "FULFILLED"
	EventProcessing          EventType = "PROCESSING"
	EventCompleted           EventType = "COMPLETED"
	EventCancelled           EventType = "CANCELLED"
	EventRejected            EventType = "REJECTED"
	EventScheduled           EventType = "SCHEDULED"
	EventDispatched          EventType = "DISPATCHED"
	EventStarted             EventType = "STARTED"
	EventHalted              EventType = "HALTED"
	EventResumed             EventType = "RESUMED"
	EventWaitingForParts     EventType = "WAITING_FOR_PARTS"
	EventPartsSupplied       EventType = "PARTS_SUPPLIED"
	EventSubmitted           EventType = "SUBMITTED"
	EventModulesReady        EventType = "MODULES_READY"
	EventCascadeAdvanced     EventType = "CASCADE_ADVANCED"
	EventCollaboratorFailure EventType = "COLLABORATOR_FAILURE"
	EventDeleted             EventType = "DELETED"
)

// Terminal customer order event names used for webhooks and the message bus
const (
	TerminalEventCompleted = "customer_order.completed"
	TerminalEventCancelled = "customer_order.cancelled"
)

// Effect is a side effect requested by a state transition. Transitions stay
// side-effect free; the service executes the effects after the transition
// commits.
type Effect interface {
	effect()
}

// AuditEffect requests one audit event write
type AuditEffect struct {
	SourceType SourceType
	OrderID    uuid.UUID
	EventType  EventType
	Message    string
}

func (AuditEffect) effect() {}

// Audit builds an AuditEffect
func Audit(source SourceType, orderID uuid.UUID, event EventType, message string) AuditEffect {
	return AuditEffect{SourceType: source, OrderID: orderID, EventType: event, Message: message}
}

// TerminalEventEffect requests webhook + message bus notification of a
// terminal customer order event
type TerminalEventEffect struct {
	Event       string
	OrderID     uuid.UUID
	OrderNumber string
}

func (TerminalEventEffect) effect() {}

// ReevaluateScenariosEffect requests re-evaluation of the predicted trigger
// scenario of every other confirmed order at a workstation, because shared
// stock moved.
type ReevaluateScenariosEffect struct {
	WorkstationID int
	Exclude       uuid.UUID
}

func (ReevaluateScenariosEffect) effect() {}

// NotifyParentEffect requests cascade propagation of a child completion to
// its structural parent
type NotifyParentEffect struct {
	Parent      ParentRef
	ChildSource SourceType
	ChildID     uuid.UUID
	ChildNumber string
}

func (NotifyParentEffect) effect() {}
