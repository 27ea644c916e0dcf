package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/aic-collections/sspad/internal/config"
	"github.com/aic-collections/sspad/internal/connectors"
	"github.com/aic-collections/sspad/internal/handlers"
	"github.com/aic-collections/sspad/internal/middleware"
	"github.com/aic-collections/sspad/internal/models"
	"github.com/aic-collections/sspad/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize the UID minter database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var guardDB *gorm.DB
	if cfg.LegacyUIDGuardEnabled {
		if err := models.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		guardDB = db
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize connectors
	lake := connectors.NewLake(cfg)
	tstore := connectors.NewTstore(cfg)
	uidminter := connectors.NewUidminter(db)
	datagrinder := connectors.NewDatagrinder(cfg)

	// Initialize services
	tagService := services.NewTagService(lake, tstore)
	assetService := services.NewAssetService(cfg, lake, tstore, uidminter, datagrinder, tagService, guardDB)

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))
	router.Use(middleware.Metrics())

	// Initialize handlers
	assetHandler := handlers.NewAssetHandler(assetService)
	tagHandler := handlers.NewTagHandler(tagService)
	commentHandler := handlers.NewCommentHandler(assetService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		assets := api.Group("/assets")
		{
			assets.GET("/:type", assetHandler.Get)
			assets.GET("/:type/search", assetHandler.Search)
			assets.POST("/:type", assetHandler.Create)
			assets.PUT("/:type", assetHandler.Update)
			assets.PATCH("/:type", assetHandler.Patch)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", tagHandler.List)
			tags.POST("", tagHandler.Create)
			tags.GET("/categories", tagHandler.ListCategories)
			tags.POST("/categories", tagHandler.CreateCategory)
		}

		api.POST("/comments", commentHandler.Create)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  300 * time.Second, // large TIFF uploads
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
