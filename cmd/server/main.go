package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/config"
	"github.com/musicmotivate/api/internal/handler"
	"github.com/musicmotivate/api/internal/middleware"
	"github.com/musicmotivate/api/internal/registry"
	"github.com/musicmotivate/api/internal/service"
	"github.com/musicmotivate/api/internal/store"
	"github.com/musicmotivate/api/internal/worker"
	ws "github.com/musicmotivate/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Open the song/audio database
	db, err := store.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	songStore := store.NewSongStore(db)
	audioStore := store.NewAudioStore(db)

	// Initialize validator
	validate := validator.New()

	// Initialize task registry
	taskRegistry := registry.New(time.Duration(cfg.Registry.TTLMinutes) * time.Minute)
	defer taskRegistry.Shutdown()

	// Initialize WebSocket hub
	hub := ws.NewHub(taskRegistry)
	go hub.Run()

	// Initialize provider clients
	sunoClient := client.NewSunoClient(&cfg.Suno)
	if !sunoClient.IsConfigured() {
		log.Println("Warning: Suno API key not configured, generation will fail")
	}
	groqClient := client.NewGroqClient(&cfg.Groq)
	audioFetcher := client.NewAudioFetcher(&cfg.Audio)

	// Initialize services
	audioCache := service.NewAudioCacheService(audioFetcher, audioStore)
	completionService := service.NewCompletionService(
		songStore, audioCache,
		time.Duration(cfg.Polling.IntervalSeconds)*time.Second,
	)
	generationService := service.NewGenerationService(
		songStore, taskRegistry, sunoClient, asynqClient,
		cfg.Suno.CallbackURL, cfg.Polling.MaxAttempts,
	)
	lyricsService := service.NewLyricsService(groqClient)

	// Initialize handlers
	songsHandler := handler.NewSongsHandler(generationService, taskRegistry, songStore, validate)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, validate)
	webhookHandler := handler.NewWebhookHandler(songStore)
	proxyHandler := handler.NewProxyHandler(audioFetcher)
	libraryHandler := handler.NewLibraryHandler(audioCache)
	tasksHandler := handler.NewTasksHandler(songStore)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "ok",
			"sunoConfigured": sunoClient.IsConfigured(),
			"groqConfigured": groqClient.IsConfigured(),
		})
	})

	// Provider-facing routes: no auth, the provider and browser call these
	// directly
	app.All("/webhooks/suno", webhookHandler.Handle)
	app.All("/api/proxy-audio", proxyHandler.Handle)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Lyrics routes
	lyrics := api.Group("/lyrics", rateLimiter.LyricsLimit(cfg.RateLimit.LyricsPerMin))
	lyrics.Post("/generate", lyricsHandler.Generate)

	// Song routes
	songs := api.Group("/songs")
	songs.Post("/generate", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), songsHandler.Generate)
	songs.Get("/status/:taskId", songsHandler.Status)
	songs.Get("/", songsHandler.History)

	// Task mapping routes
	tasks := api.Group("/tasks")
	tasks.Get("/", tasksHandler.List)
	tasks.Get("/:taskId", tasksHandler.Get)

	// Library routes (locally cached audio)
	library := api.Group("/library")
	library.Get("/", libraryHandler.List)
	library.Get("/:id/audio", libraryHandler.Audio)
	library.Delete("/:id", libraryHandler.Delete)
	library.Delete("/", libraryHandler.Clear)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/tasks/:taskId", websocket.New(func(c *websocket.Conn) {
		taskID := c.Params("taskId")
		hub.HandleConnection(c, taskID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, completionService, taskRegistry)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, completionService *service.CompletionService, taskRegistry *registry.TaskRegistry) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				service.QueueCompletion: 10,
			},
		},
	)

	completionWorker := worker.NewCompletionWorker(completionService, taskRegistry)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeCompletion, completionWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
