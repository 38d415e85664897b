package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/wyoiwyget/ai-services/config"
	httpDelivery "github.com/wyoiwyget/ai-services/internal/delivery/http"
	"github.com/wyoiwyget/ai-services/internal/domain"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/blob"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/cache"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/extract"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/ml"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/platform"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/postgres"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/taskstore"
	"github.com/wyoiwyget/ai-services/internal/infrastructure/worker"
	"github.com/wyoiwyget/ai-services/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Wyoiwyget AI Services v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Task store: %s, cache: %s", cfg.Tasks.Store, cfg.Cache.Type)

	ctx := context.Background()

	// A Redis client is shared by whichever of task store and cache asks for it
	var redisClient *redis.Client
	if cfg.Tasks.Store == "redis" || cfg.Cache.Type == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		log.Printf("Redis connected: %s", cfg.Redis.Addr)
	}

	var tasks domain.TaskStore
	if cfg.Tasks.Store == "redis" {
		tasks = taskstore.NewRedis(redisClient)
	} else {
		tasks = taskstore.NewMemory()
	}

	var appCache domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		appCache = cache.NewRedisCache(redisClient)
	} else {
		appCache = cache.NewMemoryCache()
	}

	store, err := postgres.NewStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	registry := platform.NewRegistry(cfg.Platforms.BaseURLs)
	log.Printf("Platform adapters configured: %v", registry.Platforms())

	extractor := extract.NewExtractor(registry, extract.NewGenericScraper())
	mlClient := ml.NewClient(cfg.ML.Endpoint, cfg.ML.APIKey)
	blobClient := blob.NewClient(cfg.Blob.Endpoint, cfg.Blob.Container, cfg.Blob.SASToken)

	pool := worker.NewPool(cfg.Tasks.MaxConcurrent, cfg.Tasks.Timeout)
	defer pool.Shutdown()
	log.Printf("Worker pool: max_concurrent=%d timeout=%s", cfg.Tasks.MaxConcurrent, cfg.Tasks.Timeout)

	// Usecase layer
	tracker := usecase.NewTaskTracker(tasks, pool)
	matching := usecase.NewMatchingService(extractor, registry, store, appCache, cfg.Matching.MinRelevanceThreshold)
	avatars := usecase.NewAvatarService(tracker, mlClient, blobClient, store)
	tryon := usecase.NewTryOnService(tracker, mlClient, blobClient, store, extractor)
	measurements := usecase.NewMeasurementService()

	log.Printf("Matching: relevance threshold=%.2f", cfg.Matching.MinRelevanceThreshold)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(matching, avatars, tryon, tracker, measurements)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
