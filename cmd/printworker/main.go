// printworker runs the print pipeline on its own, for deployments where
// one station does the printing for several desks sharing a journal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/opdesk/opdesk/config"
	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/internal/printing"
	"github.com/opdesk/opdesk/internal/repository/postgres"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/messaging"
	redisbroker "github.com/opdesk/opdesk/pkg/messaging/redis"
	"github.com/opdesk/opdesk/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if !cfg.Journal.Enabled {
		log.Fatal().Msg("printworker requires the print journal; enable journal in config")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("opdesk", "printworker")

	session := backend.NewSession(cfg.Session.Token)
	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL:     cfg.Backend.ReceptionistURL,
		Timeout:     cfg.Backend.Timeout,
		MaxFailures: cfg.Backend.MaxFailures,
		BreakerWait: cfg.Backend.BreakerWait,
	}, session, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build receptionist client")
	}

	db, err := postgres.NewDB(cfg.Journal.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to print journal")
	}
	defer db.Close()

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		zl := log.Logger
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	processor := printing.NewProcessor(
		postgres.NewPrintJobRepository(db),
		backend.NewReceptionistClient(client),
		printing.NewFileSpooler(cfg.Print.SpoolDir, cfg.Print.Command),
		broker,
		cfg.Print.ToProcessorConfig(),
		appLogger,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down print worker...")
	cancel()
}
