package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/factory/services/fulfillment/internal/messaging"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

type MockWorkstationOrderRepository struct {
	mock.Mock
}

func (m *MockWorkstationOrderRepository) Create(ctx context.Context, order *model.WorkstationOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockWorkstationOrderRepository) Save(ctx context.Context, order *model.WorkstationOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockWorkstationOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.WorkstationOrder), args.Error(1)
}

func (m *MockWorkstationOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.WorkstationOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.WorkstationOrder), args.Error(1)
}

func (m *MockWorkstationOrderRepository) GetBySupplyOrderID(ctx context.Context, supplyOrderID uuid.UUID) (*model.WorkstationOrder, error) {
	args := m.Called(ctx, supplyOrderID)
	return args.Get(0).(*model.WorkstationOrder), args.Error(1)
}

func (m *MockWorkstationOrderRepository) List(ctx context.Context) ([]model.WorkstationOrder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.WorkstationOrder), args.Error(1)
}

func (m *MockWorkstationOrderRepository) ListByWorkstation(ctx context.Context, workstationID int) ([]model.WorkstationOrder, error) {
	args := m.Called(ctx, workstationID)
	return args.Get(0).([]model.WorkstationOrder), args.Error(1)
}

func (m *MockWorkstationOrderRepository) ListByControlOrderID(ctx context.Context, controlOrderID uuid.UUID) ([]model.WorkstationOrder, error) {
	args := m.Called(ctx, controlOrderID)
	return args.Get(0).([]model.WorkstationOrder), args.Error(1)
}

func TestHandleProgressMessageDropsMalformedBody(t *testing.T) {
	svc := newTestService(&repository.Repositories{}, nil, nil, 10, t)

	// not valid JSON: dropped without error so the bus does not redeliver
	require.NoError(t, svc.HandleProgressMessage(context.Background(), []byte("not json")))

	// valid JSON, unparseable order id
	body, _ := json.Marshal(messaging.ProgressMessage{WorkstationOrderID: "nope", Status: "COMPLETED"})
	require.NoError(t, svc.HandleProgressMessage(context.Background(), body))
}

func TestHandleProgressMessageDropsUnknownStatus(t *testing.T) {
	svc := newTestService(&repository.Repositories{}, nil, nil, 10, t)

	body, _ := json.Marshal(messaging.ProgressMessage{
		WorkstationOrderID: uuid.NewString(),
		Status:             "EXPLODED",
	})
	require.NoError(t, svc.HandleProgressMessage(context.Background(), body))
}

func TestHandleProgressMessageHaltsOrder(t *testing.T) {
	order := &model.WorkstationOrder{
		Base:           model.Base{ID: uuid.New()},
		OrderNumber:    "WSO-000007",
		ControlOrderID: uuid.New(),
		WorkstationID:  model.WorkstationManufacturing1,
		Status:         model.WorkstationOrderInProgress,
	}

	wsoRepo := new(MockWorkstationOrderRepository)
	wsoRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	wsoRepo.On("Save", mock.Anything, order).Return(nil)

	auditRepo := new(MockAuditRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	repos := &repository.Repositories{WorkstationOrders: wsoRepo, Audit: auditRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	body, _ := json.Marshal(messaging.ProgressMessage{
		WorkstationOrderID: order.ID.String(),
		Status:             "HALTED",
		Reason:             "material jam",
	})
	require.NoError(t, svc.HandleProgressMessage(context.Background(), body))
	require.Equal(t, model.WorkstationOrderHalted, order.Status)
	wsoRepo.AssertExpectations(t)
}

func TestHandleProgressMessageReturnsTransitionErrorForRedelivery(t *testing.T) {
	// a completion report for an order that never started must come back
	order := &model.WorkstationOrder{
		Base:           model.Base{ID: uuid.New()},
		OrderNumber:    "WSO-000008",
		ControlOrderID: uuid.New(),
		Status:         model.WorkstationOrderPending,
	}

	wsoRepo := new(MockWorkstationOrderRepository)
	wsoRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil)

	repos := &repository.Repositories{WorkstationOrders: wsoRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	body, _ := json.Marshal(messaging.ProgressMessage{
		WorkstationOrderID: order.ID.String(),
		Status:             "COMPLETED",
	})
	err := svc.HandleProgressMessage(context.Background(), body)
	require.Error(t, err)
	require.True(t, model.IsInvalidTransition(err))
}
