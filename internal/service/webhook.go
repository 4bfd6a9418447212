package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/messaging"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
)

// Subscribe registers a webhook URL for a terminal customer order event.
// An empty event subscribes to all terminal events.
func (s *Service) Subscribe(ctx context.Context, rawURL, event string) (*model.WebhookSubscription, error) {
	verr := model.NewValidationError()
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		verr.Violation("url must be an absolute http(s) URL")
	}
	switch event {
	case "", "*", model.TerminalEventCompleted, model.TerminalEventCancelled:
	default:
		verr.Violation("unknown event %q", event)
	}
	if verr.HasViolations() {
		return nil, verr
	}
	if event == "" {
		event = "*"
	}
	sub := &model.WebhookSubscription{
		Base:  model.Base{ID: uuid.New()},
		URL:   rawURL,
		Event: event,
	}
	if err := s.repos.Webhooks.Create(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "failed to register webhook")
	}
	return sub, nil
}

// ListSubscriptions returns every registered webhook
func (s *Service) ListSubscriptions(ctx context.Context) ([]model.WebhookSubscription, error) {
	return s.repos.Webhooks.List(ctx)
}

// Unsubscribe removes a webhook subscription
func (s *Service) Unsubscribe(ctx context.Context, id uuid.UUID) error {
	return s.repos.Webhooks.Delete(ctx, id)
}

// publishTerminalEvent fans a terminal customer order event out to the
// message bus and to every matching webhook subscription. Delivery is best
// effort; failures are logged and never surface to the caller.
func (s *Service) publishTerminalEvent(ctx context.Context, eff model.TerminalEventEffect) {
	event := messaging.TerminalOrderEvent{
		Event:       eff.Event,
		OrderID:     eff.OrderID.String(),
		OrderNumber: eff.OrderNumber,
		OccurredAt:  time.Now().UTC(),
	}
	if s.bus != nil && s.eventsQueue != "" {
		if err := s.bus.PublishMessage(ctx, event, s.eventsQueue); err != nil {
			log.Error().Err(err).Str("event", eff.Event).
				Msg("failed to publish terminal event to service bus")
		}
	}

	subs, err := s.repos.Webhooks.ListByEvent(ctx, eff.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to load webhook subscriptions")
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode terminal event")
		return
	}
	for _, sub := range subs {
		s.deliverWebhook(ctx, sub, payload)
	}
}

func (s *Service) deliverWebhook(ctx context.Context, sub model.WebhookSubscription, payload []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Str("url", sub.URL).Msg("failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.webhooks.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", sub.URL).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("url", sub.URL).
			Msg("webhook endpoint returned an error")
		return
	}
	s.metrics.Increment(metrics.CounterWebhookDeliveries)
}
