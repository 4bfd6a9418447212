package service

import (
	"context"

	"example.com/factory/services/fulfillment/internal/model"
)

// LotSizeThreshold returns the order quantity at and above which fulfillment
// skips stock and goes straight to production planning.
func (s *Service) LotSizeThreshold(ctx context.Context) int {
	return s.cache.LotSizeThreshold(ctx)
}

// SetLotSizeThreshold updates the runtime threshold
func (s *Service) SetLotSizeThreshold(ctx context.Context, threshold int) error {
	if threshold <= 0 {
		return model.NewValidationError().
			Violation("lot size threshold must be positive, got %d", threshold)
	}
	return s.cache.SetLotSizeThreshold(ctx, threshold)
}
