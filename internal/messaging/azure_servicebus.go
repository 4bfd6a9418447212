package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/config"
)

// Client defines the message bus operations the service needs
type Client interface {
	PublishMessage(ctx context.Context, message interface{}, queueName string) error
	ReceiveLoop(ctx context.Context, queueName string, handler func(ctx context.Context, body []byte) error) error
	Close(ctx context.Context) error
}

// ProgressMessage is a production progress callback delivered by the
// scheduler through the message bus
type ProgressMessage struct {
	TaskID             string `json:"task_id"`
	WorkstationOrderID string `json:"workstation_order_id"`
	Status             string `json:"status"`
	Reason             string `json:"reason,omitempty"`
}

// TerminalOrderEvent is published when a customer order reaches a terminal
// state
type TerminalOrderEvent struct {
	Event       string    `json:"event"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// AzureServiceBusClient implements Client using Azure Service Bus
type AzureServiceBusClient struct {
	client *azservicebus.Client
}

// NewClient creates a new message bus client
func NewClient(cfg config.AzureConfig) (Client, error) {
	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service bus client")
	}
	return &AzureServiceBusClient{client: client}, nil
}

// PublishMessage publishes a JSON message to a queue
func (c *AzureServiceBusClient) PublishMessage(ctx context.Context, message interface{}, queueName string) error {
	sender, err := c.client.NewSender(queueName, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create sender for queue %s", queueName)
	}
	defer sender.Close(ctx)

	body, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	if err := sender.SendMessage(ctx, &azservicebus.Message{Body: body}, nil); err != nil {
		return errors.Wrapf(err, "failed to send message to queue %s", queueName)
	}
	return nil
}

// ReceiveLoop consumes a queue until the context is cancelled. Messages are
// completed on handler success and abandoned for redelivery on handler
// failure.
func (c *AzureServiceBusClient) ReceiveLoop(ctx context.Context, queueName string, handler func(ctx context.Context, body []byte) error) error {
	receiver, err := c.client.NewReceiverForQueue(queueName, &azservicebus.ReceiverOptions{
		ReceiveMode: azservicebus.ReceiveModePeekLock,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create receiver for queue %s", queueName)
	}
	defer receiver.Close(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("queue", queueName).Msg("Failed to receive messages, retrying")
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			if err := handler(ctx, msg.Body); err != nil {
				log.Error().Err(err).Str("queue", queueName).Msg("Message handler failed, abandoning message")
				if abandonErr := receiver.AbandonMessage(ctx, msg, nil); abandonErr != nil {
					log.Error().Err(abandonErr).Msg("Failed to abandon message")
				}
				continue
			}
			if err := receiver.CompleteMessage(ctx, msg, nil); err != nil {
				log.Error().Err(err).Msg("Failed to complete message")
			}
		}
	}
}

// Close releases the underlying connection
func (c *AzureServiceBusClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}
