package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/verone/catalog-service/config"
	"github.com/verone/catalog-service/internal/platform/broker"
	"github.com/verone/catalog-service/internal/platform/cache"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/platform/postgres"
	"github.com/verone/catalog-service/internal/platform/search"
	"go.uber.org/zap"

	catH "github.com/verone/catalog-service/internal/category/handler"
	catRepoPkg "github.com/verone/catalog-service/internal/category/repository"
	catUCPkg "github.com/verone/catalog-service/internal/category/usecase"

	grpH "github.com/verone/catalog-service/internal/group/handler"
	grpRepoPkg "github.com/verone/catalog-service/internal/group/repository"
	grpUCPkg "github.com/verone/catalog-service/internal/group/usecase"

	invH "github.com/verone/catalog-service/internal/inventory/handler"
	invListenerPkg "github.com/verone/catalog-service/internal/inventory/listener"
	invRepoPkg "github.com/verone/catalog-service/internal/inventory/repository"
	invUCPkg "github.com/verone/catalog-service/internal/inventory/usecase"

	ordH "github.com/verone/catalog-service/internal/order/handler"
	ordRepoPkg "github.com/verone/catalog-service/internal/order/repository"
	ordUCPkg "github.com/verone/catalog-service/internal/order/usecase"

	orgH "github.com/verone/catalog-service/internal/organisation/handler"
	orgRepoPkg "github.com/verone/catalog-service/internal/organisation/repository"
	orgUCPkg "github.com/verone/catalog-service/internal/organisation/usecase"

	priH "github.com/verone/catalog-service/internal/pricing/handler"
	priRepoPkg "github.com/verone/catalog-service/internal/pricing/repository"
	priUCPkg "github.com/verone/catalog-service/internal/pricing/usecase"

	prodH "github.com/verone/catalog-service/internal/product/handler"
	prodRepoPkg "github.com/verone/catalog-service/internal/product/repository"
	prodUCPkg "github.com/verone/catalog-service/internal/product/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logConfig := &logger.Config{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to PostgreSQL", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProducer.Close()
	appLogger.Info("connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// Search is optional: the product list degrades to DB queries when ES
	// is down, so a failed connection is not fatal.
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("could not connect to Elasticsearch, search disabled", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	catRepo := catRepoPkg.NewPGRepository(db)
	grpRepo := grpRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	ordRepo := ordRepoPkg.NewPGRepository(db)
	orgRepo := orgRepoPkg.NewPGRepository(db)
	priRepo := priRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)

	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	grpUC := grpUCPkg.NewGroupUseCase(grpRepo, redisClient, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	orgUC := orgUCPkg.NewOrganisationUseCase(orgRepo, appLogger)
	priUC := priUCPkg.NewPricingUseCase(priRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, appLogger)
	ordUC := ordUCPkg.NewOrderUseCase(ordRepo, priUC, invRepo, kafkaProducer, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderListener := invListenerPkg.NewListener(kafkaConsumer, invUC, appLogger)
	go orderListener.Run(ctx)
	appLogger.Info("order event listener started", zap.String("group_id", cfg.Kafka.GroupID))

	app := fiber.New(fiber.Config{
		AppName:      "verone-catalog-service",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	catH.NewCategoryHandler(catUC, appLogger).Register(api)
	grpH.NewGroupHandler(grpUC, appLogger).Register(api)
	invH.NewInventoryHandler(invUC, appLogger).Register(api)
	ordH.NewOrderHandler(ordUC, appLogger).Register(api)
	orgH.NewOrganisationHandler(orgUC, appLogger).Register(api)
	priH.NewPricingHandler(priUC, appLogger).Register(api)
	prodH.NewProductHandler(prodUC, appLogger).Register(api)

	go func() {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.Server.HTTPPort))
		if err := app.Listen(cfg.Server.HTTPPort); err != nil {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("shutdown error", zap.Error(err))
	}
}
