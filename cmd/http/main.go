package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/config"
	"github.com/fekuna/omnipos-marketplace-service/internal/auth"
	"github.com/fekuna/omnipos-marketplace-service/internal/identifier"
	"github.com/fekuna/omnipos-marketplace-service/internal/product"
	"github.com/fekuna/omnipos-marketplace-service/internal/router"
	"github.com/fekuna/omnipos-marketplace-service/internal/task"
	"github.com/fekuna/omnipos-marketplace-service/pkg/broker"
	"github.com/fekuna/omnipos-marketplace-service/pkg/cache"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-marketplace-service/pkg/i18n"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/fekuna/omnipos-marketplace-service/pkg/search"

	accH "github.com/fekuna/omnipos-marketplace-service/internal/account/handler"
	accRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/account/repository"
	accUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/account/usecase"

	attrH "github.com/fekuna/omnipos-marketplace-service/internal/attribute/handler"
	attrRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/attribute/repository"
	attrUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/attribute/usecase"

	catH "github.com/fekuna/omnipos-marketplace-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/category/usecase"

	invH "github.com/fekuna/omnipos-marketplace-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-marketplace-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-marketplace-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-marketplace-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-marketplace-service/internal/product/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// @title OmniPOS Marketplace API
// @version 1.0
// @description Catalog, account and inventory service of the OmniPOS marketplace.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Configuration
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		FilePath:          cfg.Logger.File,
		MaxSizeMB:         cfg.Logger.MaxSizeMB,
		MaxBackups:        cfg.Logger.MaxBackups,
		MaxAgeDays:        cfg.Logger.MaxAgeDays,
	})
	defer appLogger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2.5 Initialize i18n
	if err := i18n.Init(); err != nil {
		appLogger.Fatal("Could not load message catalogs", zap.Error(err))
	}
	for _, file := range cfg.I18n.Files {
		if err := i18n.Load(file); err != nil {
			appLogger.Warn("Failed to load message file", zap.String("file", file), zap.Error(err))
		}
	}

	// 3. Connect to Database
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
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Server.RunMigrations {
		if err := postgres.Migrate(context.Background(), db); err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
	}

	// 4. Initialize Repositories
	accRepo := accRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	attrRepo := attrRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 6. Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	kafkaProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.CatalogTopic,
	})
	defer kafkaProducer.Close()
	appLogger.Info("Kafka configured",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("orders_topic", cfg.Kafka.OrdersTopic),
		zap.String("catalog_topic", cfg.Kafka.CatalogTopic),
	)

	// 7. Initialize Elasticsearch; search falls back to Postgres without it
	var searcher product.Searcher
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
	} else {
		searcher = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. Initialize UseCases
	allocator := identifier.NewAllocator(
		identifier.WithMaxAttempts(cfg.Identifier.MaxAttempts),
		identifier.WithRaceRetries(cfg.Identifier.RaceRetries),
		identifier.WithRandom(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))),
	)
	issuer := auth.NewTokenIssuer(auth.Config{
		SecretKey:      cfg.JWT.SecretKey,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	})

	accUC := accUCPkg.NewAccountUseCase(accRepo, allocator, issuer, accUCPkg.NewLogResetNotifier(appLogger), accUCPkg.Config{
		ResetTTL:     cfg.PasswordReset.TTL,
		ResetLinkURL: cfg.PasswordReset.LinkURL,
	}, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, allocator, redisClient, kafkaProducer, appLogger)
	attrUC := attrUCPkg.NewAttributeUseCase(attrRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, catUC, redisClient, searcher, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, prodUC, attrUC, redisClient, invUCPkg.Config{
		CriticalUnits: cfg.Inventory.CriticalUnits,
		LockTTL:       cfg.Inventory.LockTTL,
	}, appLogger)

	// 9. Start Listener and Tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
	go invListener.Start(ctx)

	var stockTask *task.StockTask
	if cfg.Task.StockAuditEnabled {
		stockTask = task.NewStockTask(invUC, cfg.Task.StockAuditSpec, appLogger)
		if err := stockTask.Start(); err != nil {
			appLogger.Fatal("Could not start stock audit task", zap.Error(err))
		}
	}

	// 10. Initialize Handlers
	engine := router.New(&router.Handlers{
		Account:   accH.NewAccountHandler(accUC, appLogger),
		Category:  catH.NewCategoryHandler(catUC, appLogger),
		Attribute: attrH.NewAttributeHandler(attrUC, appLogger),
		Product:   prodH.NewProductHandler(prodUC, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
	}, issuer, appLogger)

	// 11. Start HTTP Server
	srv := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 12. Start gRPC health server
	grpcAddr := listenAddr(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("addr", grpcAddr), zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	if stockTask != nil {
		stockTask.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shut down", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
