package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/factory/services/fulfillment/config"
	"example.com/factory/services/fulfillment/internal/cache"
	"example.com/factory/services/fulfillment/internal/clients"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

// Mock collaborator gateways for testing

type MockInventoryGateway struct {
	mock.Mock
}

func (m *MockInventoryGateway) CheckStock(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error) {
	args := m.Called(ctx, workstationID, itemID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryGateway) Debit(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error) {
	args := m.Called(ctx, workstationID, itemID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryGateway) Credit(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error) {
	args := m.Called(ctx, workstationID, itemID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryGateway) Adjust(ctx context.Context, req clients.AdjustRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type MockBOMResolver struct {
	mock.Mock
}

func (m *MockBOMResolver) ExplodeProduct(ctx context.Context, productID int64, quantity int) (map[int64]int, error) {
	args := m.Called(ctx, productID, quantity)
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBOMResolver) ExplodeModule(ctx context.Context, moduleID int64, quantity int) (map[int64]int, error) {
	args := m.Called(ctx, moduleID, quantity)
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBOMResolver) LookupName(ctx context.Context, itemType model.ItemType, itemID int64) (string, error) {
	args := m.Called(ctx, itemType, itemID)
	return args.String(0), args.Error(1)
}

// Mock repositories for testing

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, event *model.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) ListBySource(ctx context.Context, sourceType model.SourceType, orderID uuid.UUID) ([]model.AuditEvent, error) {
	args := m.Called(ctx, sourceType, orderID)
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}

type MockCustomerOrderRepository struct {
	mock.Mock
}

func (m *MockCustomerOrderRepository) Create(ctx context.Context, order *model.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) Save(ctx context.Context, order *model.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CustomerOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) List(ctx context.Context) ([]model.CustomerOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) ListByWorkstationAndStatus(ctx context.Context, workstationID int, status model.CustomerOrderStatus) ([]model.CustomerOrder, error) {
	args := m.Called(ctx, workstationID, status)
	return args.Get(0).([]model.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) Delete(ctx context.Context, order *model.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) NextOrderNumber(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

type MockWarehouseOrderRepository struct {
	mock.Mock
}

func (m *MockWarehouseOrderRepository) Create(ctx context.Context, order *model.WarehouseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockWarehouseOrderRepository) Save(ctx context.Context, order *model.WarehouseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockWarehouseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.WarehouseOrder), args.Error(1)
}

func (m *MockWarehouseOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WarehouseOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.WarehouseOrder), args.Error(1)
}

func (m *MockWarehouseOrderRepository) GetByProductionOrderID(ctx context.Context, productionOrderID uuid.UUID) (*model.WarehouseOrder, error) {
	args := m.Called(ctx, productionOrderID)
	return args.Get(0).(*model.WarehouseOrder), args.Error(1)
}

func (m *MockWarehouseOrderRepository) ListByCustomerOrderID(ctx context.Context, customerOrderID uuid.UUID) ([]model.WarehouseOrder, error) {
	args := m.Called(ctx, customerOrderID)
	return args.Get(0).([]model.WarehouseOrder), args.Error(1)
}

func (m *MockWarehouseOrderRepository) List(ctx context.Context) ([]model.WarehouseOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.WarehouseOrder), args.Error(1)
}

type MockProductionOrderRepository struct {
	mock.Mock
}

func (m *MockProductionOrderRepository) Create(ctx context.Context, order *model.ProductionOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockProductionOrderRepository) Save(ctx context.Context, order *model.ProductionOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockProductionOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) List(ctx context.Context) ([]model.ProductionOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.ProductionOrder), args.Error(1)
}

func (m *MockProductionOrderRepository) ListByParent(ctx context.Context, parent model.ParentRef) ([]model.ProductionOrder, error) {
	args := m.Called(ctx, parent)
	return args.Get(0).([]model.ProductionOrder), args.Error(1)
}

type MockFinalAssemblyOrderRepository struct {
	mock.Mock
}

func (m *MockFinalAssemblyOrderRepository) Create(ctx context.Context, order *model.FinalAssemblyOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockFinalAssemblyOrderRepository) Save(ctx context.Context, order *model.FinalAssemblyOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockFinalAssemblyOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.FinalAssemblyOrder), args.Error(1)
}

func (m *MockFinalAssemblyOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FinalAssemblyOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.FinalAssemblyOrder), args.Error(1)
}

func (m *MockFinalAssemblyOrderRepository) List(ctx context.Context) ([]model.FinalAssemblyOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.FinalAssemblyOrder), args.Error(1)
}

func (m *MockFinalAssemblyOrderRepository) ListByParent(ctx context.Context, parent model.ParentRef) ([]model.FinalAssemblyOrder, error) {
	args := m.Called(ctx, parent)
	return args.Get(0).([]model.FinalAssemblyOrder), args.Error(1)
}

// disabledCache returns a cache that always serves the given default lot
// size threshold without touching Redis.
func disabledCache(t *testing.T, threshold int) *cache.RedisCache {
	t.Helper()
	c, err := cache.NewRedisCache(config.RedisConfig{Enabled: false}, threshold)
	require.NoError(t, err)
	return c
}

// newTestService builds a minimal service around the given mocks
func newTestService(repos *repository.Repositories, inventory *MockInventoryGateway, bom *MockBOMResolver, threshold int, t *testing.T) *Service {
	return &Service{
		repos:     repos,
		inventory: inventory,
		bom:       bom,
		cache:     disabledCache(t, threshold),
		metrics:   metrics.New(),
	}
}
