package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gamestracker/backend/internal/auth"
	"gamestracker/backend/internal/config"
	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamestracker/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Games Tracker API
// @version         1.0
// @description     This is the API for the daily game release tracker.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// Dashboard routes (public)
		apiV1.GET("/games", handler.GetGames)
		apiV1.GET("/genres", handler.GetGenres)

		statsRoutes := apiV1.Group("/stats")
		{
			statsRoutes.GET("/daily-releases", handler.GetDailyReleases)
			statsRoutes.GET("/genres", handler.GetGenreStats)
			statsRoutes.GET("/daily-counts", handler.GetDailyCounts)
		}

		// Subscriber routes (public, email-keyed)
		subscriberRoutes := apiV1.Group("/subscribers")
		{
			subscriberRoutes.POST("", handler.Subscribe)
			subscriberRoutes.DELETE("/:email", handler.Unsubscribe)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("/subscribers", handler.ListSubscribers)
			adminRoutes.POST("/ingest", handler.TriggerIngest)
		}
	}

	addr := config.AppConfig.ServerAddr
	fmt.Printf("Server is running on %s\n", addr)
	fmt.Printf("Swagger UI is available at http://localhost%s/swagger/index.html\n", addr)
	log.Fatal(router.Run(addr))
}
