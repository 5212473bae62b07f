package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kireshiki/Universalis/internal/cache"
	"github.com/kireshiki/Universalis/internal/config"
	"github.com/kireshiki/Universalis/internal/gamedata"
	"github.com/kireshiki/Universalis/internal/handler"
	"github.com/kireshiki/Universalis/internal/repository"
	"github.com/kireshiki/Universalis/internal/router"
	"github.com/kireshiki/Universalis/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Universalis API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	log.Printf("Environment: %s", cfg.App.Environment)

	// Load the world/item catalog; the server cannot run without it.
	reader, err := gamedata.NewFileReader(cfg.GameData.Path)
	if err != nil {
		log.Printf("Failed to load game data: %v", err)
		os.Exit(1)
	}
	resolver, err := gamedata.NewResolver(reader)
	if err != nil {
		log.Printf("Failed to build world catalog: %v", err)
		os.Exit(1)
	}
	log.Printf("World catalog loaded: %d worlds, %d data centers",
		len(resolver.WorldIDs()), len(resolver.DataCenters()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// PostgreSQL pool for listings and sales
	pool, err := pgxpool.New(ctx, cfg.Database.PostgresDSN())
	if err != nil {
		log.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping PostgreSQL: %v", err)
	}
	log.Println("PostgreSQL pool initialized")

	listingRepo, err := repository.NewPostgresListingRepository(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to initialize listing repository: %v", err)
	}
	saleRepo, err := repository.NewPostgresSaleRepository(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to initialize sale repository: %v", err)
	}

	// MySQL connection for the trusted-source registry
	trustedDB, err := sql.Open("mysql", cfg.TrustedDB.DSN())
	if err != nil {
		log.Fatalf("Failed to open trusted-source database: %v", err)
	}
	trustedDB.SetMaxOpenConns(10)
	trustedDB.SetMaxIdleConns(5)
	trustedDB.SetConnMaxLifetime(5 * time.Minute)
	defer trustedDB.Close()
	if err := trustedDB.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping trusted-source database: %v", err)
	}
	sourceRepo := repository.NewMySQLTrustedSourceRepository(trustedDB)
	log.Println("Trusted-source registry initialized")

	// Redis clients: master plus an optional read replica
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddress(),
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	var replicaClient *redis.Client
	if addr := cfg.Cache.ReplicaAddress(); addr != "" {
		replicaClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer replicaClient.Close()
		if err := replicaClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis replica ping failed: %v", err)
			replicaClient = nil
		}
	}
	log.Println("Redis clients initialized")

	// Cache tiers
	localCache := cache.NewMemoryCache(cfg.Cache.LocalMaxEntries)
	defer localCache.Close()
	sharedCache := cache.NewRedisCache(redisClient, replicaClient, cfg.Cache.ReplicaCount)

	// Key-value stores
	blacklistRepo := repository.NewRedisBlacklistRepository(redisClient)
	taxRepo := repository.NewRedisTaxRatesRepository(redisClient)
	countRepo := repository.NewRedisUploadCountRepository(redisClient)

	// Services
	listingService := service.NewListingService(listingRepo, localCache, sharedCache)
	saleService := service.NewSaleService(saleRepo)
	marketService := service.NewMarketService(resolver, listingService, saleService)
	uploadService := service.NewUploadService(sourceRepo, blacklistRepo,
		service.NewListingsBehavior(listingService),
		service.NewSalesBehavior(saleService),
		service.NewTaxRatesBehavior(taxRepo),
		service.NewTrustedSourceIncrementBehavior(sourceRepo),
		service.NewDailyUploadIncrementBehavior(countRepo),
	)

	// Create router
	r := router.New(router.Config{
		Handler:       handler.New(),
		MarketHandler: handler.NewMarketHandler(marketService),
		UploadHandler: handler.NewUploadHandler(uploadService),
		ExtraHandler:  handler.NewExtraHandler(resolver, taxRepo, countRepo),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
