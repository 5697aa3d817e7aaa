package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/aimguide/internal/admin"
	"github.com/playmatatu/aimguide/internal/api"
	"github.com/playmatatu/aimguide/internal/config"
	"github.com/playmatatu/aimguide/internal/database"
	"github.com/playmatatu/aimguide/internal/migrations"
	"github.com/playmatatu/aimguide/internal/models"
	"github.com/playmatatu/aimguide/internal/profiles"
	"github.com/playmatatu/aimguide/internal/redis"
	"github.com/playmatatu/aimguide/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		repo   profiles.Repository
		lookup admin.AccountLookup
	)

	switch cfg.ProfileStore {
	case "memory":
		repo = profiles.NewMemoryStore()
		l, err := admin.StaticLookup(cfg.AdminUsername, cfg.AdminToken)
		if err != nil {
			log.Printf("[ADMIN] static admin disabled: %v", err)
			l = func(context.Context, string) (*models.AdminAccount, error) { return nil, admin.ErrUnknownAccount }
		}
		lookup = l
		log.Println("[PROFILES] using in-memory profile store")
	default:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		repo = profiles.NewStore(db)
		lookup = admin.DBLookup(db)
	}

	// Redis carries cross-instance profile events, preview cache and login limits
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client
	} else {
		log.Println("[REDIS] REDIS_URL not set; running single-instance without cache")
	}

	if err := profiles.EnsureDefault(ctx, repo, cfg.DefaultProfile); err != nil {
		log.Fatalf("Failed to create default profile: %v", err)
	}

	hub := ws.NewHub(repo, rdb, cfg)
	go hub.Run(ctx)
	hub.StartEventSubscriber(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, repo, lookup, hub, rdb, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting aimguide server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
