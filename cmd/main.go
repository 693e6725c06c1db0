package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redis "github.com/redis/go-redis/v9"

	"github.com/RaikyD/studio-booking-service/internal/application"
	"github.com/RaikyD/studio-booking-service/internal/calendar"
	"github.com/RaikyD/studio-booking-service/internal/config"
	"github.com/RaikyD/studio-booking-service/internal/gateway"
	"github.com/RaikyD/studio-booking-service/internal/kafka"
	"github.com/RaikyD/studio-booking-service/internal/lock"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/metrics"
	"github.com/RaikyD/studio-booking-service/internal/migrate"
	"github.com/RaikyD/studio-booking-service/internal/notification"
	"github.com/RaikyD/studio-booking-service/internal/presentation"
	"github.com/RaikyD/studio-booking-service/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger is not configured yet.
		logger.Init("console", "info")
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogFormat, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		repo   repository.OrderRepo
		health func(context.Context) error
	)
	if cfg.DBString != "" {
		if err := migrate.Up(ctx, cfg.DBString); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		pool, err := pgxpool.New(ctx, cfg.DBString)
		if err != nil {
			logger.Error("pgxpool new failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("db ping failed", "err", err)
			os.Exit(1)
		}
		logger.Info("db connected")
		repo = repository.NewOrderRepository(pool)
		health = pool.Ping
	} else {
		logger.Warn("DB_STRING empty, orders are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Outbound clients
	gw := gateway.NewClient(gateway.Config{
		BaseURL:         cfg.Flow.APIURL,
		APIKey:          cfg.Flow.APIKey,
		SecretKey:       cfg.Flow.SecretKey,
		URLConfirmation: cfg.Flow.URLConfirmation,
		URLReturn:       cfg.Flow.URLReturn,
		Currency:        cfg.Flow.Currency,
		PaymentMethod:   cfg.Flow.PaymentMethod,
		Timeout:         cfg.Flow.Timeout,
	})
	email := notification.NewEmailClient(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.Timeout)
	dispatcher := notification.NewDispatcher(email, cfg.Email.From, cfg.Email.OperatorEmail, m)

	var cal application.Calendar
	if cfg.Calendar.Enabled() {
		c, err := calendar.NewClient(calendar.Config{
			TenantID:     cfg.Calendar.TenantID,
			ClientID:     cfg.Calendar.ClientID,
			ClientSecret: cfg.Calendar.ClientSecret,
			CalendarID:   cfg.Calendar.CalendarID,
			GraphURL:     cfg.Calendar.GraphURL,
			LoginURL:     cfg.Calendar.LoginURL,
			TimeZone:     cfg.Calendar.TimeZone,
			Location:     cfg.Calendar.Location,
			Timeout:      cfg.Calendar.Timeout,
		})
		if err != nil {
			logger.Error("calendar client failed", "err", err)
			os.Exit(1)
		}
		cal = c
	} else {
		logger.Warn("calendar credentials missing, slot and appointment endpoints disabled")
	}

	// Optional infrastructure
	var events application.EventPublisher
	if cfg.Kafka.Enabled() {
		prod := kafka.NewProducer(cfg.Kafka.BrokerList(), cfg.Kafka.Topic)
		defer prod.Close()
		events = prod
	}

	var locker application.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed", "err", err)
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
	}

	// Wiring
	payments := application.NewPaymentService(repo, gw, application.PaymentConfig{
		OrderPrefix:   cfg.Flow.OrderPrefix,
		SubjectPrefix: cfg.Flow.SubjectPrefix,
		Currency:      cfg.Flow.Currency,
	}, m)
	confirmations := application.NewConfirmationService(repo, gw, dispatcher, events, locker, m)
	studio := application.NewStudioService(cal, dispatcher)

	if cfg.Kafka.Enabled() {
		_, _ = kafka.StartConsumer(ctx, confirmations, kafka.ConsumerConfig{
			Brokers: cfg.Kafka.BrokerList(),
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
	}

	r := presentation.NewRouter(presentation.RouterDeps{
		Payments: presentation.NewPaymentsHandler(payments, confirmations, cfg.Pages, cfg.CallbackTimeout),
		Studio:   presentation.NewStudioHandler(studio),
		Gatherer: reg,
		Health:   health,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting http", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server crashed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", "err", err)
	}
}
