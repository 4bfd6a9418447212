package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/factory/services/fulfillment/config"
	"example.com/factory/services/fulfillment/internal/cache"
	"example.com/factory/services/fulfillment/internal/clients"
	"example.com/factory/services/fulfillment/internal/database"
	"example.com/factory/services/fulfillment/internal/messaging"
	"example.com/factory/services/fulfillment/internal/model"
	"example.com/factory/services/fulfillment/internal/repository"
	"example.com/factory/services/fulfillment/internal/search"
	"example.com/factory/services/fulfillment/internal/service"
	"example.com/factory/services/fulfillment/internal/tracing"
)

// bootstrap wires the full service from configuration. The message bus may
// be nil when no connection string is configured.
func bootstrap(cfg config.Config) (*service.Service, messaging.Client, tracing.Tracer, *gorm.DB, error) {
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := model.SetupModels(db); err != nil {
		return nil, nil, nil, nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.Fulfillment.DefaultLotSizeThreshold)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without audit indexing")
	}

	var bus messaging.Client
	if cfg.Azure.ConnectionString != "" {
		bus, err = messaging.NewClient(cfg.Azure)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	svc := service.New(
		repository.New(db),
		clients.NewInventoryClient(cfg.Collaborators.InventoryURL, cfg.Collaborators.Timeout),
		clients.NewBOMClient(cfg.Collaborators.BOMURL, cfg.Collaborators.Timeout),
		clients.NewSchedulerClient(cfg.Collaborators.SchedulerURL, cfg.Collaborators.Timeout),
		redisCache,
		elasticClient,
		bus,
		tracer,
		cfg.Azure.EventsQueue,
	)
	return svc, bus, tracer, db, nil
}
