package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/bot"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/classifier"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/conversation"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/inbox"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/server"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"github.com/marcelohs402015/app-email-attendant-sub001/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store storage.Storage
	if cfg.Storage.Driver == "postgres" {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	} else {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	}
	defer store.Close()

	var sessions storage.SessionRepository = store
	if cfg.SessionDriver() == "redis" {
		client := storage.NewRedisClient(storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		repo := storage.NewRedisSessionRepository(client, cfg.Redis.KeyPrefix)
		if err := repo.Ping(ctx); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
		}
		logger.Info("Using Redis session storage", zap.String("addr", cfg.Redis.Addr))
		sessions = repo
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize classifier and inbox
	clf := classifier.New(logger, classifier.NewMetrics(reg), cfg.Classifier.UncategorizedLabel)
	inboxSvc := inbox.NewService(store, store, clf, logger)
	if cfg.Classifier.SeedDefaultRules {
		if _, err := inboxSvc.SeedDefaultRules(ctx, classifier.DefaultRules()); err != nil {
			logger.Fatal("Failed to seed categories", zap.Error(err))
		}
	}

	// Initialize conversation engine
	engine := conversation.NewEngine(sessions,
		conversation.WithLogger(logger),
		conversation.WithResourceStore(store),
		conversation.WithMetrics(conversation.NewMetrics(reg)),
	)

	// Start the bot
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, engine, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(ctx); err != nil {
				logger.Error("Bot error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("Telegram token not set, bot disabled")
	}

	// Start the HTTP server
	srv := server.New(server.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gatherer:       reg,
	}, engine, inboxSvc, store, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
