package main

import (
	"context"
	"log"

	"obrolin/server/internal/config"
	"obrolin/server/internal/database"
	"obrolin/server/internal/handlers"
	"obrolin/server/internal/routes"
	"obrolin/server/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	utils.SetSecret(cfg.JWTSecret)

	// Connect to database and ensure schema
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Wire stores and event feed hub
	handlers.Init(cfg)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Obrolin API v1.0",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(app)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
