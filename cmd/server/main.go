package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/internal/api/handlers"
	"github.com/brandcast/brandcast/internal/api/middleware"
	"github.com/brandcast/brandcast/internal/dispatch"
	job "github.com/brandcast/brandcast/internal/jobs"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/queue"
	"github.com/brandcast/brandcast/internal/repository"
	"github.com/brandcast/brandcast/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := repository.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Trigger-Secret",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	registry := platform.NewRegistry()
	registry.Register(platform.Facebook, platform.NewFacebookPublisher())
	registry.Register(platform.Instagram, platform.NewInstagramPublisher())
	registry.Register(platform.LinkedIn, platform.NewLinkedInPublisher())
	registry.Register(platform.YouTube, platform.NewYouTubePublisher())

	resolver := dispatch.NewCredentialResolver(credentialRepo, []byte(cfg.SecretKey))
	limiter := dispatch.NewPlatformLimiter(cfg.PlatformMinInterval)
	dispatcher := dispatch.NewDispatcher(registry, resolver, limiter, cfg.PublishTimeout, cfg.MaxConcurrentCalls)
	recorder := dispatch.NewRecorder(postRepo)
	router := dispatch.NewRouter(postRepo, dispatcher, recorder, queue.NewEnqueuer(client))

	scanner := scheduler.NewScanner(postRepo, dispatcher, recorder,
		cfg.ScanBatchLimit, cfg.ScanCycleTimeout, cfg.MaxConcurrentPosts)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	trigger := handlers.NewTriggerHandler(*cfg, scanner)
	app.Post("/internal/scan", trigger.TriggerScan)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/internal/token", auth.IssueToken)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	publish := handlers.NewPublishHandler(router, postRepo)
	api.Post("/posts/create", publish.CreatePost)
	api.Get("/posts", publish.ListPosts)
	api.Post("/posts/reschedule", publish.ReschedulePost)

	credentials := handlers.NewCredentialHandler(credentialRepo, []byte(cfg.SecretKey))
	api.Post("/credentials/connect", credentials.ConnectCredential)
	api.Get("/credentials", credentials.ListCredentials)
	api.Post("/credentials/posting", credentials.SetPostingEnabled)
	api.Post("/credentials/remove", credentials.RemoveCredential)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, credentialRepo)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc(cfg.ScanSpec, func() {
		scanner.RunCycle(context.Background())
	})
	c.Start()

	// queue
	queueW := queue.NewQueue(postRepo, dispatcher, recorder)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDeliverPost, queueW.HandleDeliverPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, db, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
