package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/opdesk/opdesk/config"
	"github.com/opdesk/opdesk/internal/backend"
	"github.com/opdesk/opdesk/internal/directory"
	adminHandler "github.com/opdesk/opdesk/internal/handler/admin"
	authHandler "github.com/opdesk/opdesk/internal/handler/auth"
	directoryHandler "github.com/opdesk/opdesk/internal/handler/directory"
	healthHandler "github.com/opdesk/opdesk/internal/handler/health"
	patientHandler "github.com/opdesk/opdesk/internal/handler/patient"
	printingHandler "github.com/opdesk/opdesk/internal/handler/printing"
	registrationHandler "github.com/opdesk/opdesk/internal/handler/registration"
	scannerHandler "github.com/opdesk/opdesk/internal/handler/scanner"
	"github.com/opdesk/opdesk/internal/middleware"
	"github.com/opdesk/opdesk/internal/printing"
	"github.com/opdesk/opdesk/internal/registration"
	"github.com/opdesk/opdesk/internal/repository"
	"github.com/opdesk/opdesk/internal/repository/memory"
	"github.com/opdesk/opdesk/internal/repository/postgres"
	"github.com/opdesk/opdesk/internal/router"
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

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("opdesk", "gateway")

	// Session is established once and injected into every client;
	// logout clears it (no ambient token lookup anywhere).
	session := backend.NewSession(cfg.Session.Token)

	clientCfg := func(baseURL string) backend.ClientConfig {
		return backend.ClientConfig{
			BaseURL:     baseURL,
			Timeout:     cfg.Backend.Timeout,
			MaxFailures: cfg.Backend.MaxFailures,
			BreakerWait: cfg.Backend.BreakerWait,
		}
	}

	receptionistHTTP, err := backend.NewClient(clientCfg(cfg.Backend.ReceptionistURL), session, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build receptionist client")
	}
	adminHTTP, err := backend.NewClient(clientCfg(cfg.Backend.AdminURL), session, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build admin client")
	}
	scannerHTTP, err := backend.NewClient(clientCfg(cfg.Backend.ScannerURL), session, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build scanner client")
	}

	// Login itself runs without a session token.
	authHTTP, err := backend.NewClient(clientCfg(cfg.Backend.AuthURL), nil, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build auth client")
	}

	receptionistAPI := backend.NewReceptionistClient(receptionistHTTP)
	adminAPI := backend.NewAdminClient(adminHTTP)
	scannerAPI := backend.NewScannerClient(scannerHTTP)
	authAPI := backend.NewAuthClient(authHTTP, session)

	// Print-job journal: postgres when configured, in-memory otherwise.
	var (
		jobRepo repository.PrintJobRepository
		db      *sqlx.DB
	)
	if cfg.Journal.Enabled {
		db, err = postgres.NewDB(cfg.Journal.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to print journal")
		}
		defer db.Close()
		jobRepo = postgres.NewPrintJobRepository(db)
	} else {
		jobRepo = memory.NewPrintJobRepository()
	}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		zl := log.Logger
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	dir := directory.NewService(receptionistAPI, directory.Config{TTL: cfg.Directory.TTL}, appLogger, m)

	printSvc := printing.NewService(jobRepo, appLogger, m)
	spooler := printing.NewFileSpooler(cfg.Print.SpoolDir, cfg.Print.Command)
	processor := printing.NewProcessor(jobRepo, receptionistAPI, spooler, broker,
		cfg.Print.ToProcessorConfig(), appLogger, m)

	regSvc := registration.NewService(
		receptionistAPI,
		registration.NewReducer(dir),
		registration.NewDraftValidator(cfg.Validation),
		printSvc,
		broker,
		appLogger,
		m,
	)

	var rateLimitRPS float64
	if cfg.RateLimit.Enabled {
		rateLimitRPS = cfg.RateLimit.RequestsPerSecond
	}

	r := router.NewRouter(
		router.Config{
			RateLimitRPS:   rateLimitRPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(),
		},
		registrationHandler.NewHandler(regSvc, dir),
		directoryHandler.NewHandler(dir),
		printingHandler.NewHandler(printSvc),
		patientHandler.NewHandler(receptionistAPI),
		adminHandler.NewHandler(adminAPI),
		scannerHandler.NewHandler(scannerAPI),
		authHandler.NewHandler(authAPI, session),
		healthHandler.NewHandler(db),
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processor.Start(ctx)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down gateway...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("gateway exited properly")
}
