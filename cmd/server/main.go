package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gradeworks/evaluation-service/internal/cache"
	"github.com/gradeworks/evaluation-service/internal/config"
	"github.com/gradeworks/evaluation-service/internal/events"
	"github.com/gradeworks/evaluation-service/internal/handlers"
	"github.com/gradeworks/evaluation-service/internal/identity"
	"github.com/gradeworks/evaluation-service/internal/llm"
	"github.com/gradeworks/evaluation-service/internal/ocr"
	"github.com/gradeworks/evaluation-service/internal/repositories"
	"github.com/gradeworks/evaluation-service/internal/repositories/memory"
	"github.com/gradeworks/evaluation-service/internal/repositories/postgres"
	"github.com/gradeworks/evaluation-service/internal/services"
	"github.com/gradeworks/evaluation-service/internal/utils"
	"github.com/gradeworks/evaluation-service/internal/validator"
	"github.com/gradeworks/evaluation-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "development" {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	}
	slogger := utils.ToSlogLogger(logger)

	logger.Info("starting evaluation service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_driver", cfg.StorageDriver)

	// Storage
	var repo repositories.Repository
	switch cfg.StorageDriver {
	case "postgres":
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			logger.LogError(err, "failed to connect to database")
			os.Exit(1)
		}
		repo, err = postgres.NewRepository(db)
		if err != nil {
			logger.LogError(err, "failed to initialize postgres repositories")
			os.Exit(1)
		}
	default:
		repo = memory.NewRepository()
	}

	// Cache (optional)
	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	// Events
	var publisher events.EventPublisher
	publisher, err = events.NewKafkaEventPublisher(events.PublisherConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.EventsTopic,
		Logger:  slogger,
	})
	if err != nil {
		logger.Warn("kafka unavailable, events will be logged only", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer publisher.Close()

	// External capabilities
	extractor := ocr.NewHTTPExtractor(ocr.Config{
		URL:      cfg.OCRURL,
		Language: cfg.OCRLanguage,
		Timeout:  cfg.OCRTimeout,
	}, slogger)

	evaluator := llm.New(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, slogger)

	verifier := identity.NewCasdoorVerifier(identity.Config{
		Endpoint:     cfg.CasdoorEndpoint,
		ClientID:     cfg.CasdoorClientID,
		ClientSecret: cfg.CasdoorClientSecret,
		Certificate:  cfg.CasdoorCertificate,
		Organization: cfg.CasdoorOrganization,
		Application:  cfg.CasdoorApplication,
	})

	// Services and routes
	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:      repo,
		Cache:     cacheService,
		Extractor: extractor,
		Evaluator: evaluator,
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    slogger,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, verifier, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "server error")
			os.Exit(1)
		}
	}()
	logger.Info("server listening", "addr", server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "forced shutdown")
	}
}
