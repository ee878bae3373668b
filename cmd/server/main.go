package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"healthcred/internal/intake"
	"healthcred/internal/intake/analyzer"
	"healthcred/internal/intake/blob"
	intakehandler "healthcred/internal/intake/handler"
	intakemetrics "healthcred/internal/intake/metrics"
	"healthcred/internal/offers"
	offerscache "healthcred/internal/offers/cache"
	offershandler "healthcred/internal/offers/handler"
	offersmetrics "healthcred/internal/offers/metrics"
	"healthcred/internal/platform/config"
	"healthcred/internal/platform/httpserver"
	"healthcred/internal/platform/logger"
	platformpostgres "healthcred/internal/platform/postgres"
	platformredis "healthcred/internal/platform/redis"
	"healthcred/internal/score"
	scorehandler "healthcred/internal/score/handler"
	scoremetrics "healthcred/internal/score/metrics"
	transport "healthcred/internal/transport/http"
	"healthcred/internal/wallet"
	wallethandler "healthcred/internal/wallet/handler"
	audit "healthcred/pkg/platform/audit"
	auditpublisher "healthcred/pkg/platform/audit/publisher"
	auditmemory "healthcred/pkg/platform/audit/store/memory"
	auditworker "healthcred/pkg/platform/audit/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	db, err := platformpostgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit trail. Kafka when brokers are configured, otherwise an in-memory
	// store fed through the background worker.
	var auditPublisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := auditpublisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("audit producer close failed", "error", err)
			}
		}()
		auditPublisher = kafka
		log.Info("audit events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		inbox := make(chan audit.Event, 256)
		worker := auditworker.NewWorker(auditmemory.New(), inbox)
		group.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		auditPublisher = auditworker.NewPublisher(inbox)
		log.Info("audit events to in-memory store")
	}

	// Score model.
	var scoreStore score.Store
	if db != nil {
		scoreStore = score.NewPostgresStore(db)
	} else {
		scoreStore = score.NewInMemoryStore()
	}
	scoreService := score.New(scoreStore,
		score.WithLogger(log),
		score.WithAuditPublisher(auditPublisher),
		score.WithMetrics(scoremetrics.New()),
	)

	// Offer catalog and matcher.
	var offerStore offers.Store
	if db != nil {
		pgStore := offers.NewPostgresStore(db)
		if err := pgStore.Seed(ctx, offers.SeedCatalog()); err != nil {
			return err
		}
		offerStore = pgStore
	} else {
		offerStore = offers.NewSeededStore()
	}
	if redisClient != nil {
		offerStore = offerscache.New(offerStore, redisClient.Client, cfg.Offers.CatalogTTL, log)
	}
	matcher := offers.NewMatcher(offers.Policy{
		ReviewBand: cfg.Offers.ReviewBand,
		Permissive: cfg.Offers.Permissive,
	})
	offerOpts := []offers.Option{
		offers.WithLogger(log),
		offers.WithAuditPublisher(auditPublisher),
		offers.WithMetrics(offersmetrics.New()),
	}
	if cfg.Offers.RequireOffers {
		offerOpts = append(offerOpts, offers.WithRequireOffers())
	}
	offerService := offers.New(offerStore, scoreService, matcher, offerOpts...)

	// Document intake.
	var blobStore blob.Store
	if redisClient != nil {
		blobStore = blob.NewRedisStore(redisClient.Client)
	} else {
		blobStore = blob.NewMemoryStore()
	}
	var workflowStore intake.Store
	if db != nil {
		workflowStore = intake.NewPostgresStore(db)
	} else {
		workflowStore = intake.NewMemoryStore()
	}
	intakeService := intake.New(
		intake.Config{
			MaxUploadBytes: cfg.Intake.MaxUploadBytes,
			UploadTimeout:  cfg.Intake.UploadTimeout,
			VerifyTimeout:  cfg.Intake.VerifyTimeout,
		},
		workflowStore,
		blobStore,
		analyzer.NewHeuristic(3*time.Second),
		scoreService,
		intake.WithLogger(log),
		intake.WithAuditPublisher(auditPublisher),
		intake.WithMetrics(intakemetrics.New()),
	)

	// Wallet sessions.
	var sessionStore wallet.Store
	if redisClient != nil {
		sessionStore = wallet.NewRedisStore(redisClient.Client)
	} else {
		sessionStore = wallet.NewMemoryStore()
	}
	tokens := wallet.NewTokenManager([]byte(cfg.JWTSigningKey), cfg.Wallet.SessionTTL)
	walletService := wallet.New(
		wallet.NewSimulated(2*time.Second),
		sessionStore,
		tokens,
		cfg.Wallet.SessionTTL,
		wallet.WithLogger(log),
		wallet.WithAuditPublisher(auditPublisher),
	)

	router := transport.New(transport.Handlers{
		Wallet: wallethandler.New(walletService, log),
		Score:  scorehandler.New(scoreService, log),
		Offers: offershandler.New(offerService, log),
		Intake: intakehandler.New(intakeService, log, cfg.Intake.MaxUploadBytes),
	}, tokens, walletService, log)

	server := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
