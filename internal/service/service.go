package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/factory/services/fulfillment/internal/cache"
	"example.com/factory/services/fulfillment/internal/clients"
	"example.com/factory/services/fulfillment/internal/messaging"
	"example.com/factory/services/fulfillment/internal/metrics"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
	"example.com/factory/services/fulfillment/internal/search"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// InventoryGateway reads and mutates stock levels at the factory's
// warehouses and supermarkets.
type InventoryGateway interface {
	CheckStock(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error)
	Debit(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error)
	Credit(ctx context.Context, workstationID int, itemID int64, quantity int) (bool, error)
	Adjust(ctx context.Context, req clients.AdjustRequest) (bool, error)
}

// BOMResolver explodes products and modules into their component demand.
type BOMResolver interface {
	ExplodeProduct(ctx context.Context, productID int64, quantity int) (map[int64]int, error)
	ExplodeModule(ctx context.Context, moduleID int64, quantity int) (map[int64]int, error)
	LookupName(ctx context.Context, itemType model.ItemType, itemID int64) (string, error)
}

// ProductionScheduler submits production orders to the external scheduling
// engine and tracks per-workstation task progress.
type ProductionScheduler interface {
	Submit(ctx context.Context, order *model.ProductionOrder) (clients.ScheduleResult, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status string) error
	GetScheduledTasks(ctx context.Context, scheduleID string) ([]clients.ScheduledTask, error)
}

// Service orchestrates order lifecycles across all order kinds.
type Service struct {
	repos     *repository.Repositories
	inventory InventoryGateway
	bom       BOMResolver
	scheduler ProductionScheduler
	cache     *cache.RedisCache
	search    *search.ElasticClient
	bus       messaging.Client
	tracer    tracing.Tracer
	metrics   *metrics.Metrics
	webhooks  *http.Client

	eventsQueue string
}

func New(
	repos *repository.Repositories,
	inventory InventoryGateway,
	bom BOMResolver,
	scheduler ProductionScheduler,
	redisCache *cache.RedisCache,
	elastic *search.ElasticClient,
	bus messaging.Client,
	tracer tracing.Tracer,
	eventsQueue string,
) *Service {
	return &Service{
		repos:       repos,
		inventory:   inventory,
		bom:         bom,
		scheduler:   scheduler,
		cache:       redisCache,
		search:      elastic,
		bus:         bus,
		tracer:      tracer,
		metrics:     metrics.Default(),
		webhooks:    &http.Client{Timeout: 10 * time.Second},
		eventsQueue: eventsQueue,
	}
}

// runEffects executes the side effects a transition produced, after the
// transaction carrying the transition has committed. Effects never fail the
// operation that produced them.
func (s *Service) runEffects(ctx context.Context, effects []model.Effect) {
	for _, e := range effects {
		switch eff := e.(type) {
		case model.AuditEffect:
			s.recordAudit(ctx, eff)
		case model.TerminalEventEffect:
			s.publishTerminalEvent(ctx, eff)
		case model.ReevaluateScenariosEffect:
			s.reevaluateWorkstation(ctx, eff.WorkstationID, eff.Exclude)
		case model.NotifyParentEffect:
			if err := s.propagateToParent(ctx, eff); err != nil {
				log.Error().Err(err).
					Str("parent_kind", string(eff.Parent.Kind)).
					Str("parent_id", eff.Parent.ID.String()).
					Str("child", eff.ChildNumber).
					Msg("parent cascade failed")
			}
		default:
			log.Warn().Msgf("unhandled effect type %T", e)
		}
	}
}
