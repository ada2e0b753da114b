package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractiq/backend/config"
	controller "github.com/contractiq/backend/controller"
	"github.com/contractiq/backend/initializers"
	middleware "github.com/contractiq/backend/middleware"
	service "github.com/contractiq/backend/service"
)

func main() {
	initializers.LoadEnv()
	cfg := config.Load()

	if err := initializers.ConnectDB(cfg); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(cfg); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}

	docService, err := service.NewDocumentService(initializers.DB, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize document service: %s", err)
	}

	docController := controller.NewDocumentController(docService)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Global rate limiter for most routes
	router.Use(middleware.GlobalRateLimiter.Limit())

	// Upload is the expensive path, keep it on the strict limiter
	router.POST("/upload",
		middleware.StrictRateLimiter.Limit(),
		docController.UploadDocument)

	router.GET("/documents/:id", docController.GetDocument)
	router.GET("/documents", docController.GetAllDocuments)
	router.GET("/search", docController.SearchDocuments)

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.Run(":" + cfg.Port)
}
