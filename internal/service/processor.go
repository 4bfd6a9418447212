package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/messaging"
)

// HandleProgressMessage applies a shop floor progress report received from
// the message bus to its workstation order. A malformed message is dropped;
// a failed transition is returned so the bus redelivers.
func (s *Service) HandleProgressMessage(ctx context.Context, body []byte) error {
	var msg messaging.ProgressMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error().Err(err).Str("body", string(body)).Msg("dropping malformed progress message")
		return nil
	}
	orderID, err := uuid.Parse(msg.WorkstationOrderID)
	if err != nil {
		log.Error().Err(err).Str("workstation_order_id", msg.WorkstationOrderID).
			Msg("dropping progress message with invalid order id")
		return nil
	}

	log.Info().
		Str("workstation_order_id", msg.WorkstationOrderID).
		Str("status", msg.Status).
		Msg("processing progress message")

	switch msg.Status {
	case "IN_PROGRESS":
		_, err = s.StartWorkstationOrder(ctx, orderID)
	case "COMPLETED":
		_, err = s.CompleteWorkstationOrder(ctx, orderID)
	case "HALTED":
		_, err = s.HaltWorkstationOrder(ctx, orderID, msg.Reason)
	case "RESUMED":
		_, err = s.ResumeWorkstationOrder(ctx, orderID)
	default:
		log.Warn().Str("status", msg.Status).Msg("dropping progress message with unknown status")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to apply progress %s to workstation order %s",
			msg.Status, msg.WorkstationOrderID)
	}
	return nil
}
