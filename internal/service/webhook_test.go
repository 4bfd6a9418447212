package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/factory/services/fulfillment/internal/messaging"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

type MockWebhookRepository struct {
	mock.Mock
}

func (m *MockWebhookRepository) Create(ctx context.Context, sub *model.WebhookSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockWebhookRepository) List(ctx context.Context) ([]model.WebhookSubscription, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.WebhookSubscription), args.Error(1)
}

func (m *MockWebhookRepository) ListByEvent(ctx context.Context, event string) ([]model.WebhookSubscription, error) {
	args := m.Called(ctx, event)
	return args.Get(0).([]model.WebhookSubscription), args.Error(1)
}

func (m *MockWebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestSubscribeDefaultsToAllEvents(t *testing.T) {
	whRepo := new(MockWebhookRepository)
	whRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.WebhookSubscription")).Return(nil)

	repos := &repository.Repositories{Webhooks: whRepo}
	svc := newTestService(repos, nil, nil, 10, t)

	sub, err := svc.Subscribe(context.Background(), "https://example.com/hook", "")
	require.NoError(t, err)
	require.Equal(t, "*", sub.Event)
	whRepo.AssertExpectations(t)
}

func TestSubscribeRejectsBadInput(t *testing.T) {
	svc := newTestService(&repository.Repositories{}, nil, nil, 10, t)

	_, err := svc.Subscribe(context.Background(), "not-a-url", model.TerminalEventCompleted)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Subscribe(context.Background(), "https://example.com/hook", "customer_order.exploded")
	require.ErrorAs(t, err, &verr)
}

func TestPublishTerminalEventDeliversWebhooks(t *testing.T) {
	received := make(chan messaging.TerminalOrderEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event messaging.TerminalOrderEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	whRepo := new(MockWebhookRepository)
	whRepo.On("ListByEvent", mock.Anything, model.TerminalEventCompleted).
		Return([]model.WebhookSubscription{
			{Base: model.Base{ID: uuid.New()}, URL: server.URL, Event: "*"},
		}, nil)

	svc := &Service{
		repos:    &repository.Repositories{Webhooks: whRepo},
		metrics:  metrics.New(),
		webhooks: &http.Client{Timeout: 5 * time.Second},
	}

	orderID := uuid.New()
	svc.publishTerminalEvent(context.Background(), model.TerminalEventEffect{
		Event:       model.TerminalEventCompleted,
		OrderID:     orderID,
		OrderNumber: "CO-000099",
	})

	select {
	case event := <-received:
		require.Equal(t, model.TerminalEventCompleted, event.Event)
		require.Equal(t, orderID.String(), event.OrderID)
		require.Equal(t, "CO-000099", event.OrderNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}
