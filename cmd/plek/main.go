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

	"plek/internal/app/policies"
	authservice "plek/internal/app/services/auth"
	"plek/internal/app/services/catalog"
	"plek/internal/app/services/quote"
	"plek/internal/app/services/reservation"
	domainauth "plek/internal/domain/auth"
	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/money"
	domainuser "plek/internal/domain/user"
	"plek/internal/infra/billing"
	"plek/internal/infra/broker/kafka"
	"plek/internal/infra/config"
	mongodb "plek/internal/infra/db/mongo"
	ginserver "plek/internal/infra/http/gin"
	"plek/internal/infra/obs"
	"plek/internal/infra/security"
	"plek/internal/infra/storage/memory"
	redisstore "plek/internal/infra/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting",
		"addr", cfg.HTTPAddr,
		"env", cfg.Env,
		"storage", cfg.StorageMode,
		"sessions", cfg.SessionsMode,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
}

type stores struct {
	users      domainuser.Repository
	sessions   domainauth.SessionStore
	properties domainproperty.Repository
	estimates  domainbooking.EstimateStore
	bookings   domainbooking.Store
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	cleanups := make([]func(), 0, 2)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	st, ready, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return application{}, cleanup, err
	}

	if cfg.SessionsMode == "redis" {
		redisSessions := redisstore.NewSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisSessions.Ping(ctx); err != nil {
			return application{}, cleanup, err
		}
		st.sessions = redisSessions
		logger.Info("redis sessions enabled", "addr", cfg.RedisAddr)
	}

	var events policies.EventsPort = policies.NopEvents{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
		})
		events = producer
		logger.Info("kafka events enabled", "brokers", cfg.KafkaBrokers)
	}

	var billingPort policies.BillingPort
	if cfg.BillingBaseURL != "" {
		billingPort = billing.NewClient(cfg.BillingBaseURL, cfg.BillingAPIKey, cfg.BillingTimeout, logger)
		logger.Info("billing verification enabled", "base_url", cfg.BillingBaseURL)
	} else {
		logger.Warn("billing verification disabled, confirmations will be rejected")
	}

	defaultRate := money.Must(cfg.DefaultRateCents, cfg.Currency)
	tokens := security.RandomTokenGenerator{}

	authSvc := &authservice.Service{
		Users:      st.users,
		Sessions:   st.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     tokens,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	quoteSvc := &quote.Service{
		Properties:  st.properties,
		Estimates:   st.estimates,
		Bookings:    st.bookings,
		Tiers:       pricing.DefaultTiers,
		Tokens:      tokens,
		Events:      events,
		DefaultRate: defaultRate,
		Logger:      logger,
	}
	reservationSvc := &reservation.Service{
		Properties:    st.properties,
		Estimates:     st.estimates,
		Bookings:      st.bookings,
		Billing:       billingPort,
		Events:        events,
		BillingWindow: cfg.BillingWindow,
		Logger:        logger,
	}
	catalogSvc := &catalog.Service{
		Properties: st.properties,
		Logger:     logger,
	}

	handlers := ginserver.Handlers{
		Auth:           &ginserver.AuthHandler{Auth: authSvc, Logger: logger},
		Availability:   &ginserver.AvailabilityHandler{Reservations: reservationSvc, Logger: logger},
		Estimate:       &ginserver.EstimateHandler{Quotes: quoteSvc, Reservations: reservationSvc, Logger: logger},
		Booking:        &ginserver.BookingHandler{Reservations: reservationSvc, Logger: logger},
		Property:       &ginserver.PropertyHandler{Catalog: catalogSvc, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware(authSvc),
	}

	return application{handlers: handlers, ready: ready}, cleanup, nil
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func() error, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return stores{}, nil, err
		}
		users := mongodb.NewUserRepository(client.DB)
		properties := mongodb.NewPropertyRepository(client.DB)
		estimates := mongodb.NewEstimateStore(client.DB)
		bookings := mongodb.NewBookingStore(client.DB)
		for _, ensure := range []func(context.Context) error{
			users.EnsureIndexes,
			properties.EnsureIndexes,
			estimates.EnsureIndexes,
			bookings.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				return stores{}, nil, err
			}
		}
		logger.Info("mongo storage enabled", "database", cfg.MongoDB)
		return stores{
			users:      users,
			sessions:   memory.NewSessionStore(),
			properties: properties,
			estimates:  estimates,
			bookings:   bookings,
		}, func() error { return client.Ping(context.Background()) }, nil
	}

	return stores{
		users:      memory.NewUserRepository(),
		sessions:   memory.NewSessionStore(),
		properties: memory.NewPropertyRepository(),
		estimates:  memory.NewEstimateStore(),
		bookings:   memory.NewBookingStore(),
	}, func() error { return nil }, nil
}
