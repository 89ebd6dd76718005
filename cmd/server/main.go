package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/cubie-app/chat/internal/cache"
	"github.com/cubie-app/chat/internal/handlers"
	"github.com/cubie-app/chat/internal/middleware"
	"github.com/cubie-app/chat/internal/repository"
	"github.com/cubie-app/chat/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "Cubie Chat Gateway",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache (optional; the gateway degrades to uncached)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}
	groupCache := cache.NewGroupCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	groupService := service.NewGroupService(groupRepo, messageRepo, userRepo, groupCache)
	messageService := service.NewMessageService(messageRepo, groupRepo)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(messageService, groupService)
	notificationService := service.NewNotificationService(wsHandler.GetHub())
	groupHandler := handlers.NewGroupHandler(groupService, wsHandler.GetHub())
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Protected routes
	api := app.Group("/api", middleware.AuthRequired())
	api.Get("/groups", groupHandler.GetMyGroups)
	api.Post("/groups", groupHandler.CreateGroup)
	api.Post("/groups/:id/members", groupHandler.AddMembers)
	api.Delete("/groups/:id/members/:memberId", groupHandler.RemoveMember)
	api.Get("/messages/group/:id", messageHandler.GetGroupMessages)
	api.Post(
		"/notifications/announce",
		limiter.New(limiter.Config{
			Max:        30,
			Expiration: time.Minute,
		}),
		notificationHandler.Announce,
	)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Cubie chat gateway is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
