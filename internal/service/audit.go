package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
)

// recordAudit appends one audit event and mirrors it into the search index.
// Audit writes never fail the operation that produced them.
func (s *Service) recordAudit(ctx context.Context, eff model.AuditEffect) {
	event := &model.AuditEvent{
		ID:         uuid.New(),
		SourceType: eff.SourceType,
		OrderID:    eff.OrderID,
		EventType:  eff.EventType,
		Message:    eff.Message,
	}
	if err := s.repos.Audit.Append(ctx, event); err != nil {
		log.Error().Err(err).
			Str("source_type", string(eff.SourceType)).
			Str("order_id", eff.OrderID.String()).
			Str("event_type", string(eff.EventType)).
			Msg("failed to append audit event")
		return
	}
	if s.search != nil {
		if err := s.search.IndexAuditEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID.String()).
				Msg("failed to index audit event")
		}
	}
}

// AuditTrail returns the recorded events of one order, oldest first.
func (s *Service) AuditTrail(ctx context.Context, sourceType model.SourceType, orderID uuid.UUID) ([]model.AuditEvent, error) {
	return s.repos.Audit.ListBySource(ctx, sourceType, orderID)
}

// reportCollaboratorFailure audits an unreachable or failing collaborator
// against the order whose operation hit it.
func (s *Service) reportCollaboratorFailure(ctx context.Context, source model.SourceType, orderID uuid.UUID, collaborator string, err error) {
	s.metrics.Increment(metrics.CounterCollaboratorFailures)
	log.Error().Err(err).
		Str("collaborator", collaborator).
		Str("order_id", orderID.String()).
		Msg("collaborator call failed")
	s.recordAudit(ctx, model.Audit(source, orderID, model.EventCollaboratorFailure,
		collaborator+" unavailable: "+err.Error()))
}
