package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/model"
)

const bomCacheTTL = 5 * time.Minute

// demandLine is one unfulfilled quantity of an ordered item
type demandLine struct {
	ItemType model.ItemType
	ItemID   int64
	Quantity int
}

// aggregateModuleDemand explodes product lines through the bill of materials
// and merges the results into a single module demand map. A module appearing
// under several products is summed, never duplicated. Module lines pass
// through as demand for themselves.
func (s *Service) aggregateModuleDemand(ctx context.Context, lines []demandLine) (map[int64]int, error) {
	demand := make(map[int64]int)
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		switch line.ItemType {
		case model.ItemTypeProduct:
			components, err := s.explodeProductCached(ctx, line.ItemID, line.Quantity)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to explode product %d", line.ItemID)
			}
			if len(components) == 0 {
				return nil, model.NewValidationError().
					Violation("product %d has no bill of materials", line.ItemID)
			}
			for moduleID, qty := range components {
				demand[moduleID] += qty
			}
		case model.ItemTypeModule:
			demand[line.ItemID] += line.Quantity
		default:
			return nil, model.NewValidationError().
				Violation("item %d: type %s cannot be ordered at the plant warehouse", line.ItemID, line.ItemType)
		}
	}
	if len(demand) == 0 {
		return nil, model.NewValidationError().Violation("order explodes to no module demand")
	}
	return demand, nil
}

// explodeProductCached resolves a product's bill of materials through the
// cache. The BOM changes rarely; a short TTL keeps scenario routing from
// hammering the resolver for every confirmed order at the same workstation.
func (s *Service) explodeProductCached(ctx context.Context, productID int64, quantity int) (map[int64]int, error) {
	key := fmt.Sprintf("fulfillment:bom:product:%d:%d", productID, quantity)

	var cached map[int64]int
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	components, err := s.bom.ExplodeProduct(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, components, bomCacheTTL); err != nil {
		log.Debug().Err(err).Int64("product_id", productID).Msg("failed to cache BOM explosion")
	}
	return components, nil
}

// aggregatePartDemand explodes a module into the raw parts needed to build it
func (s *Service) aggregatePartDemand(ctx context.Context, moduleID int64, quantity int) (map[int64]int, error) {
	parts, err := s.bom.ExplodeModule(ctx, moduleID, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to explode module %d", moduleID)
	}
	if len(parts) == 0 {
		return nil, model.NewValidationError().
			Violation("module %d has no bill of materials", moduleID)
	}
	return parts, nil
}

// sortedItemIDs returns the keys of a demand map in ascending order so that
// materialized order lines come out deterministic.
func sortedItemIDs(demand map[int64]int) []int64 {
	ids := make([]int64, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
