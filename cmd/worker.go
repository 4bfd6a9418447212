package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/factory/services/fulfillment/config"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that consumes production progress messages and runs periodic fulfillment jobs`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Wire the service from configuration
	svc, bus, _, _, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	if bus != nil {
		defer bus.Close(context.Background())
	}

	// Start the production progress consumer
	if bus != nil && cfg.Azure.ProgressQueue != "" {
		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.ProgressQueue).Msg("Starting production progress consumer")
			return bus.ReceiveLoop(ctx, cfg.Azure.ProgressQueue, svc.HandleProgressMessage)
		})
	} else {
		log.Warn().Msg("No message bus configured, production progress will not be consumed")
	}

	// Start the periodic fulfillment jobs
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		// Re-evaluate scenario predictions for confirmed customer orders, so
		// that stock movements since confirmation are reflected before fulfill
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Fulfillment.ReevaluateInterval),
			gocron.NewTask(func() {
				if err := svc.ReevaluateConfirmedOrders(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to re-evaluate confirmed orders")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Flag supply orders that have been pending for too long
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Fulfillment.ReevaluateInterval),
			gocron.NewTask(func() {
				if err := svc.ReportStaleSupplyOrders(ctx, cfg.Fulfillment.SupplyStaleAfter); err != nil {
					log.Error().Err(err).Msg("Failed to report stale supply orders")
				}
			}),
		)
		if err != nil {
			return err
		}

		// Start the scheduler
		scheduler.Start()

		// Wait for context cancellation
		<-ctx.Done()

		// Shutdown the scheduler
		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
