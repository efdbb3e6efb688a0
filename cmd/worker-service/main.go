package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/studioshot/headshot-be/internal/config"
	"github.com/studioshot/headshot-be/internal/notify"
	"github.com/studioshot/headshot-be/internal/pipeline"
	"github.com/studioshot/headshot-be/internal/promptgen"
	"github.com/studioshot/headshot-be/internal/provider"
	"github.com/studioshot/headshot-be/internal/storage"
	"github.com/studioshot/headshot-be/internal/worker"
	"github.com/studioshot/headshot-be/shared/logger"
	"github.com/studioshot/headshot-be/shared/postgresql"
	"github.com/studioshot/headshot-be/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	appLogger.Info("RabbitMQ connection established")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providerClient := provider.NewClient(provider.Options{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  os.Getenv(apiKeyEnv(cfg.Provider.APIKeyEnv, "PROVIDER_API_KEY")),
		Timeout: cfg.Provider.Timeout,
	})

	promptSource, err := promptgen.NewGemini(ctx,
		os.Getenv(apiKeyEnv(cfg.Prompts.APIKeyEnv, "GEMINI_API_KEY")),
		cfg.Prompts.Model,
		cfg.Prompts.Count,
		appLogger.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize prompt source: %w", err)
	}

	notifier := notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout, appLogger.Logger)

	pipe := pipeline.New(&pipeline.Options{
		Logger:   appLogger.Logger,
		Store:    storage.NewStorage(dbClient.GetDB(), appLogger.Logger),
		Provider: providerClient,
		Prompts:  promptSource,
		Notifier: notifier,
		Config:   pipelineConfig(&cfg.Pipeline),
	})

	workerInstance := worker.NewWorker(&worker.Config{
		Logger:        appLogger.Logger,
		RabbitClient:  rabbitClient,
		Pipeline:      pipe,
		Concurrency:   cfg.Worker.Concurrency,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	shutdownTimeout := cfg.Worker.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	if dbClient != nil {
		dbClient.Close()
	}
	if rabbitClient != nil {
		rabbitClient.Close()
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// apiKeyEnv picks the configured env var name or its fallback.
func apiKeyEnv(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

// pipelineConfig maps the YAML section onto the pipeline's config.
func pipelineConfig(cfg *config.PipelineConfig) pipeline.Config {
	return pipeline.Config{
		UploadPollInterval: cfg.UploadPollInterval,
		UploadPollAttempts: cfg.UploadPollAttempts,
		ModelPollInterval:  cfg.ModelPollInterval,
		ModelPollAttempts:  cfg.ModelPollAttempts,
		ImagePollInterval:  cfg.ImagePollInterval,
		ImagePollAttempts:  cfg.ImagePollAttempts,
		ImagePollRounds:    cfg.ImagePollRounds,
		PromptLimit:        cfg.PromptLimit,
		ImagesPerPrompt:    cfg.ImagesPerPrompt,
		PromptConcurrency:  cfg.PromptConcurrency,
		WatchdogDelay:      cfg.WatchdogDelay,
		OutputWidth:        cfg.OutputWidth,
		OutputHeight:       cfg.OutputHeight,
		Sampler:            cfg.Sampler,
	}
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		DeadLetterQueue:    cfg.Queue.DeadLetter,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
