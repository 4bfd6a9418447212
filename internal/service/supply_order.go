package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/clients"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
)

// GetSupplyOrder loads one supply order with its items
func (s *Service) GetSupplyOrder(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error) {
	return s.repos.SupplyOrders.GetByID(ctx, id)
}

// ListSupplyOrders returns all supply orders
func (s *Service) ListSupplyOrders(ctx context.Context) ([]model.SupplyOrder, error) {
	return s.repos.SupplyOrders.List(ctx)
}

// FulfillSupplyOrder moves every requested part from the parts supply
// warehouse to the requesting workstation and unblocks the waiting
// workstation order.
func (s *Service) FulfillSupplyOrder(ctx context.Context, id uuid.UUID) (*model.SupplyOrder, error) {
	order, err := s.repos.SupplyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Fulfill()
	if err != nil {
		return nil, err
	}
	if err := s.repos.SupplyOrders.Save(ctx, order); err != nil {
		return nil, err
	}

	// move each part line from the supply warehouse to the requesting
	// station as two signed deltas
	for _, item := range order.Items {
		if _, err := s.inventory.Adjust(ctx, clients.AdjustRequest{
			WorkstationID: order.SupplyWorkstationID,
			ItemID:        item.PartID,
			Delta:         -item.QuantitySupplied,
		}); err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceSupplyOrder, order.ID, "inventory", err)
		}
		if _, err := s.inventory.Adjust(ctx, clients.AdjustRequest{
			WorkstationID: order.RequestingWorkstationID,
			ItemID:        item.PartID,
			Delta:         item.QuantitySupplied,
		}); err != nil {
			s.reportCollaboratorFailure(ctx, model.SourceSupplyOrder, order.ID, "inventory", err)
		}
	}
	s.runEffects(ctx, effects)
	s.unblockWorkstationOrder(ctx, order)
	return order, nil
}

// RejectSupplyOrder declines the request; the blocked workstation order
// stays blocked for a new request.
func (s *Service) RejectSupplyOrder(ctx context.Context, id uuid.UUID, reason string) (*model.SupplyOrder, error) {
	order, err := s.repos.SupplyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Reject(reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.SupplyOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// CancelSupplyOrder withdraws the request
func (s *Service) CancelSupplyOrder(ctx context.Context, id uuid.UUID, reason string) (*model.SupplyOrder, error) {
	order, err := s.repos.SupplyOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	effects, err := order.Cancel(reason)
	if err != nil {
		return nil, err
	}
	if err := s.repos.SupplyOrders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.runEffects(ctx, effects)
	return order, nil
}

// unblockWorkstationOrder returns the workstation order waiting on a
// fulfilled supply order to its runnable state.
func (s *Service) unblockWorkstationOrder(ctx context.Context, supplyOrder *model.SupplyOrder) {
	wso, err := s.repos.WorkstationOrders.GetBySupplyOrderID(ctx, supplyOrder.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("supply_order", supplyOrder.OrderNumber).
				Msg("failed to find workstation order for supply order")
		}
		return
	}
	effects, err := wso.PartsSupplied()
	if err != nil {
		log.Error().Err(err).Str("order_number", wso.OrderNumber).
			Msg("cannot unblock workstation order")
		return
	}
	if err := s.repos.WorkstationOrders.Save(ctx, wso); err != nil {
		log.Error().Err(err).Str("order_number", wso.OrderNumber).
			Msg("failed to save unblocked workstation order")
		return
	}
	s.runEffects(ctx, effects)
}

// ReportStaleSupplyOrders audits supply orders that stayed pending past the
// configured cutoff. Run periodically by the worker.
func (s *Service) ReportStaleSupplyOrders(ctx context.Context, staleAfter time.Duration) error {
	cutoff := time.Now().Add(-staleAfter)
	orders, err := s.repos.SupplyOrders.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "failed to list stale supply orders")
	}
	for _, order := range orders {
		s.metrics.Increment(metrics.CounterStaleSupplyOrders)
		log.Warn().
			Str("order_number", order.OrderNumber).
			Int("requesting_workstation", order.RequestingWorkstationID).
			Time("created_at", order.CreatedAt).
			Msg("supply order pending past cutoff")
		s.recordAudit(ctx, model.Audit(model.SourceSupplyOrder, order.ID, model.EventCollaboratorFailure,
			fmt.Sprintf("supply order %s pending since %s", order.OrderNumber, order.CreatedAt.Format(time.RFC3339))))
	}
	return nil
}
