package main

import (
	"log"

	"github.com/Ankitaa-Mannaa/task-manager/internal/authz"
	"github.com/Ankitaa-Mannaa/task-manager/internal/config"
	"github.com/Ankitaa-Mannaa/task-manager/internal/database"
	"github.com/Ankitaa-Mannaa/task-manager/internal/handlers"
	"github.com/Ankitaa-Mannaa/task-manager/internal/middleware"
	"github.com/Ankitaa-Mannaa/task-manager/internal/repository"
	"github.com/Ankitaa-Mannaa/task-manager/internal/services"
	"github.com/Ankitaa-Mannaa/task-manager/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewLogRepository(db)

	policy := authz.Policy{Mode: authz.ParseMode(cfg.AuthMode)}
	secret := []byte(cfg.JWTSecret)

	audit := services.NewAuditRecorder(logRepo)
	authService := services.NewAuthService(userRepo, secret, cfg.TokenTTL)
	taskService := services.NewTaskService(taskRepo, userRepo, policy, audit)

	files := storage.NewFileStore(cfg.UploadDir)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, audit, files)

	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(userRepo, secret)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.PUT("/role/:userId", requireAuth, authHandler.ChangeRole)
	}

	task := r.Group("/task")
	task.Use(requireAuth)
	{
		task.POST("/create", taskHandler.Create)
		task.GET("/all", taskHandler.List)
		task.GET("/logs", taskHandler.Logs)
		task.PUT("/:taskId", taskHandler.Update)
		task.DELETE("/:taskId", taskHandler.Delete)
		task.GET("/:taskId/due", taskHandler.DueInfo)
		task.POST("/:taskId/upload", taskHandler.Upload)
	}

	// Start server
	log.Printf("Server starting on :%s (auth mode %s)", cfg.Port, policy.Mode)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
