package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/config"
	"github.com/vitovidale/video-recognition-service/domain"
	"github.com/vitovidale/video-recognition-service/infrastructure"
	"github.com/vitovidale/video-recognition-service/usecase"
)

const connectAttempts = 5

func initDB(cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	var err error
	for i := 0; i < connectAttempts; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", cfg.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info("connected to PostgreSQL", zap.String("host", cfg.Host))
				return db, nil
			}
			db.Close()
		}
		logger.Warn("retrying database connection in 5s", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("could not connect to the database after %d attempts: %w", connectAttempts, err)
}

func initRabbitMQ(cfg config.RabbitMQConfig, logger *zap.Logger) (*amqp.Connection, error) {
	var err error
	for i := 0; i < connectAttempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(cfg.URL())
		if err == nil {
			logger.Info("connected to RabbitMQ", zap.String("host", cfg.Host))
			return conn, nil
		}
		logger.Warn("retrying RabbitMQ connection in 5s", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", connectAttempts, err)
}

// newCapabilityRegistry registers a provider per capability. Providers run on
// every lookup, so a host that appears later is picked up without a restart.
func newCapabilityRegistry(cfg config.Config) *infrastructure.CapabilityRegistry {
	registry := infrastructure.NewCapabilityRegistry()

	if cfg.Host.MediaRoot != "" {
		store := infrastructure.NewLocalMediaStore(cfg.Host.MediaRoot, cfg.Host.PublicPrefix, cfg.Host.NativeFormats)
		registry.Register(domain.CapabilityNativeSave, func() (any, error) {
			if err := os.MkdirAll(store.Root, 0755); err != nil {
				return nil, fmt.Errorf("media root not writable: %w", err)
			}
			return store, nil
		})
	}
	if cfg.Host.BaseURL != "" {
		registry.RegisterValue(domain.CapabilityGenericUpload, infrastructure.NewHTTPUploadClient(cfg.Host.BaseURL, cfg.Host.RequestTimeout))
	}
	switch {
	case cfg.OpenAI.APIKey != "":
		registry.RegisterValue(domain.CapabilityRecognize, infrastructure.NewOpenAIRecognizer(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model))
	case cfg.Host.BaseURL != "":
		registry.RegisterValue(domain.CapabilityRecognize, infrastructure.NewHTTPGenerateClient(cfg.Host.BaseURL, cfg.Host.RequestTimeout))
	}
	registry.RegisterValue(domain.CapabilityContentHash, infrastructure.SHA256Hasher{})
	registry.RegisterValue(domain.CapabilityExtensionInfer, infrastructure.MimeExtensionInferrer{})
	registry.RegisterValue(domain.CapabilityOwnerLabel, infrastructure.ContextOwnerLabeler{})
	return registry
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET not set, using the development secret; this is insecure for production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewPrometheusMetrics("video_recognition", reg)
	healthChecks := map[string]infrastructure.HealthCheck{}

	var repo domain.ResultRepository
	if cfg.Database.Enabled {
		db, err := initDB(cfg.Database, logger)
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()
		pgRepo := infrastructure.NewPostgresVideoRepository(db, logger)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare schema", zap.Error(err))
		}
		repo = pgRepo
		healthChecks["database"] = db.Ping
	}

	var broker *infrastructure.RabbitMQBroker
	if cfg.RabbitMQ.Enabled {
		conn, err := initRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			logger.Fatal("RabbitMQ unavailable", zap.Error(err))
		}
		defer conn.Close()
		broker = infrastructure.NewRabbitMQBroker(conn, cfg.RabbitMQ.EventsQueue, cfg.RabbitMQ.JobsQueue, logger)
		healthChecks["rabbitmq"] = func() error {
			if conn.IsClosed() {
				return errors.New("disconnected")
			}
			return nil
		}
	}

	registry := newCapabilityRegistry(cfg)
	validator := usecase.NewValidator(cfg.Video.SupportedFormats, cfg.Video.MaxSizeMB*1024*1024)
	uploadUC := &usecase.UploadVideoUseCase{
		Validator: validator,
		Encoder:   &usecase.Encoder{MaxBytes: validator.MaxSize},
		Resolver:  registry,
		Executor:  &usecase.UploadExecutor{Logger: logger, Metrics: metrics},
		Names:     usecase.NewNameGenerator(),
		Logger:    logger,
		Metrics:   metrics,
	}
	recognizeUC := &usecase.RecognizeVideoUseCase{
		Resolver:         registry,
		ResponseLanguage: cfg.Video.ResponseLanguage,
		Logger:           logger,
		Metrics:          metrics,
	}
	processUC := &usecase.ProcessVideoUseCase{
		Upload:    uploadUC,
		Recognize: recognizeUC,
		Repo:      repo,
		Logger:    logger,
	}
	handlers := &infrastructure.VideoHandlers{
		UploadVideoUC:    uploadUC,
		RecognizeVideoUC: recognizeUC,
		ProcessVideoUC:   processUC,
		StatusUC: &usecase.StatusUseCase{
			Resolver:    registry,
			Validator:   validator,
			ServiceName: config.ServiceName,
			Version:     config.ServiceVersion,
			Logger:      logger,
		},
		Repo:   repo,
		Logger: logger,
	}

	if broker != nil {
		processUC.Publisher = broker
		jobUC := &usecase.RecognitionJobUseCase{
			Queue:     broker,
			Recognize: recognizeUC,
			Publisher: broker,
			Logger:    logger,
		}
		handlers.RecognitionJobUC = jobUC
		go func() {
			if err := jobUC.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("recognition job consumer stopped", zap.Error(err))
			}
		}()
	}

	router := infrastructure.NewRouter(infrastructure.RouterConfig{
		Handlers:     handlers,
		JWTSecret:    []byte(cfg.Server.JWTSecret),
		Metrics:      metrics,
		Gatherer:     reg,
		HealthChecks: healthChecks,
	})
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	status := usecase.StatusUseCase{Resolver: registry, Validator: validator}
	logger.Info("video recognition service listening",
		zap.String("port", cfg.Server.Port),
		zap.Any("capabilities", status.Check().Capabilities))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
