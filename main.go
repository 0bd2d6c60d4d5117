package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"galaxy-learn-backend/handlers"
	"galaxy-learn-backend/services"
	"galaxy-learn-backend/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	var store storage.Store
	backend := os.Getenv("STORE_BACKEND")
	switch backend {
	case "", "redis":
		backend = "redis"
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		s, err := storage.NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			log.Fatal("failed to connect to redis:", err)
		}
		store = s
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}
		s, err := storage.NewGormStore(dsn)
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		store = s
	default:
		log.Fatalf("unknown STORE_BACKEND %q (expected redis or postgres)", backend)
	}

	authClient := services.NewSupabaseAuthClient(
		os.Getenv("SUPABASE_URL"),
		os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		os.Getenv("SUPABASE_ANON_KEY"),
	)
	if !authClient.Configured() {
		log.Println("⚠️  SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY not set — signup will be unavailable")
	}

	progressService := services.NewProgressService(store)
	achievementService := services.NewAchievementService(store, progressService)

	services.StartHealthScheduler(store)

	handlers.SetupAuthRoutes(app, authClient, progressService)
	handlers.SetupProgressRoutes(app, progressService, achievementService, authClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Store backend: %s", backend)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
