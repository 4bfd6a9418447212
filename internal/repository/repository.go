package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Repositories bundles all aggregate repositories over one database handle.
// WithTx rebinds the set to a transaction so a whole order mutation commits
// as one atomic unit.
type Repositories struct {
	DB                  *gorm.DB
	CustomerOrders      CustomerOrderRepository
	WarehouseOrders     WarehouseOrderRepository
	ProductionOrders    ProductionOrderRepository
	ControlOrders       ControlOrderRepository
	WorkstationOrders   WorkstationOrderRepository
	FinalAssemblyOrders FinalAssemblyOrderRepository
	SupplyOrders        SupplyOrderRepository
	Audit               AuditRepository
	Webhooks            WebhookRepository
	Sequences           SequenceRepository
}

// New creates the repository set
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:                  db,
		CustomerOrders:      NewCustomerOrderRepository(db),
		WarehouseOrders:     NewWarehouseOrderRepository(db),
		ProductionOrders:    NewProductionOrderRepository(db),
		ControlOrders:       NewControlOrderRepository(db),
		WorkstationOrders:   NewWorkstationOrderRepository(db),
		FinalAssemblyOrders: NewFinalAssemblyOrderRepository(db),
		SupplyOrders:        NewSupplyOrderRepository(db),
		Audit:               NewAuditRepository(db),
		Webhooks:            NewWebhookRepository(db),
		Sequences:           NewSequenceRepository(db),
	}
}

// WithTx rebinds the repository set to a transaction handle
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return New(tx)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
