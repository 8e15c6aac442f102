package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jannikanker/OhHellCardGame/internal/config"
	accountHttp "github.com/jannikanker/OhHellCardGame/internal/modules/account/adapter/http"
	accountLocal "github.com/jannikanker/OhHellCardGame/internal/modules/account/adapter/local"
	accountDomain "github.com/jannikanker/OhHellCardGame/internal/modules/account/domain"
	accountRepo "github.com/jannikanker/OhHellCardGame/internal/modules/account/repository"
	accountUseCase "github.com/jannikanker/OhHellCardGame/internal/modules/account/usecase"
	gameHttp "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/adapter/http"
	gameLocal "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/adapter/local"
	gameDomain "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	gameDB "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/repository/db"
	gameMemory "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/repository/memory"
	gameRedis "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/repository/redis"
	gameUseCase "github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/usecase"
	gatewayHttp "github.com/jannikanker/OhHellCardGame/internal/modules/gateway/adapter/http"
	gatewayUseCase "github.com/jannikanker/OhHellCardGame/internal/modules/gateway/usecase"
	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/ws"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
)

func main() {
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	flag.Parse()

	// 1. Load Config
	cfg := config.LoadMonolithConfig()

	// 2. Initialize logger
	logger.InitWithFile("logs/boerenbridge/monolith.log", cfg.Game.Server.LogLevel, "json")
	defer logger.Flush()
	ctx := context.Background()

	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.Info(ctx).Str("addr", addr).Msg("Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.Error(ctx).Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	logger.Info(ctx).Msg("Starting BoerenBridge monolith")

	// 3. Initialize infrastructure
	dbConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Account.Database.Host, cfg.Account.Database.Port, cfg.Account.Database.User,
		cfg.Account.Database.Password, cfg.Account.Database.Name)

	db, err := gorm.Open(postgres.Open(dbConnStr), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to ping database")
	}

	if err := db.AutoMigrate(
		&accountDomain.User{},
		&accountDomain.Session{},
		&gameDomain.GameRegistry{},
		&gameDomain.RegistryPlayer{},
		&gameDomain.GameArchive{},
		&gameDomain.PlayerScore{},
	); err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to migrate database schema")
	}
	logger.Info(ctx).Msg("Database connected")

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Game.Redis.Host, cfg.Game.Redis.Port),
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal(ctx).Err(err).Msg("Failed to ping Redis")
	}
	logger.Info(ctx).Msg("Redis connected")

	// 4. Initialize modules

	// Account module
	userRepository := accountRepo.NewUserRepository(db)
	sessionRepository := accountRepo.NewSessionRepository(db)
	accountUC := accountUseCase.NewAccountUseCase(userRepository, sessionRepository, cfg.Account.JWT.Secret, cfg.Account.JWT.Duration)
	userSvc := accountLocal.NewHandler(accountUC)
	accountHttpHandler := accountHttp.NewHandler(accountUC)
	logger.Info(ctx).Msg("Account module initialized")

	// Gateway manager (initialize early, the game broadcaster needs it)
	wsManager := ws.NewManager(ws.Options{
		PingInterval:   cfg.Gateway.WebSocket.PingInterval,
		WriteWait:      cfg.Gateway.WebSocket.WriteWait,
		PongWait:       cfg.Gateway.WebSocket.PongWait,
		MaxMessageSize: cfg.Gateway.WebSocket.MaxMessageSize,
	})
	go wsManager.Run()

	// BoerenBridge module
	var liveGames gameDomain.GameRepository
	if cfg.Game.RepoType == "memory" {
		liveGames = gameMemory.NewGameRepository()
		logger.Info(ctx).Msg("Live game store: memory")
	} else {
		liveGames = gameRedis.NewGameRepository(rdb)
		logger.Info(ctx).Msg("Live game store: Redis")
	}

	registryRepository := gameDB.NewRegistryRepository(db)
	archiveRepository := gameDB.NewArchiveRepository(db)
	broadcaster := gameLocal.NewBroadcaster(wsManager)

	gameUC := gameUseCase.NewGameUseCase(
		liveGames, archiveRepository, broadcaster,
		cfg.Game.Settings.SystemAdmin, cfg.Game.Settings.TopScoresLimit,
	)
	registryUC := gameUseCase.NewRegistryUseCase(registryRepository, liveGames, cfg.Game.Settings.SystemAdmin)
	gameSvc := gameLocal.NewHandler(gameUC)
	gameHttpHandler := gameHttp.NewHandler(registryUC, gameUC, userSvc)
	logger.Info(ctx).Msg("BoerenBridge module initialized")

	// Gateway module
	gatewayUC := gatewayUseCase.NewGatewayUseCase(gameSvc, wsManager)
	gatewayHttpHandler := gatewayHttp.NewHandler(gatewayUC, wsManager, userSvc)

	// 5. HTTP servers

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	// Gateway server (WebSocket)
	gatewayRouter := gin.New()
	gatewayRouter.Use(gin.Recovery())
	gatewayRouter.Use(logger.GinMiddleware())
	gatewayRouter.GET("/ws", func(c *gin.Context) {
		gatewayHttpHandler.HandleWebSocket(c.Writer, c.Request)
	})

	// REST server (accounts, registries, scores)
	apiRouter := gin.New()
	apiRouter.Use(gin.Recovery())
	apiRouter.Use(logger.GinMiddleware())
	apiRouter.Use(cors.New(corsConfig))

	api := apiRouter.Group("/api")
	{
		accountHttpHandler.RegisterRoutes(api.Group("/accounts"))
		gameHttpHandler.RegisterRoutes(api)
	}

	gatewayPort := cfg.Gateway.Server.HTTPPort
	apiPort := cfg.Account.Server.HTTPPort

	gatewaySrv := &http.Server{
		Addr:    ":" + gatewayPort,
		Handler: gatewayRouter,
	}
	apiSrv := &http.Server{
		Addr:    ":" + apiPort,
		Handler: apiRouter,
	}

	logger.Info(ctx).
		Str("gateway_port", gatewayPort).
		Str("api_port", apiPort).
		Str("ws_url", fmt.Sprintf("ws://localhost:%s/ws?token=YOUR_TOKEN", gatewayPort)).
		Msg("BoerenBridge monolith running")

	go func() {
		if err := gatewaySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx).Err(err).Msg("Gateway server failed")
		}
	}()
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx).Err(err).Msg("API server failed")
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx).Msg("Shutting down servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gatewaySrv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("Gateway server forced to shutdown")
	}
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx).Err(err).Msg("API server forced to shutdown")
	}

	wsManager.Shutdown()
	logger.Info(ctx).Msg("Server exited properly")
}
