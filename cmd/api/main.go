package main

import (
	_ "aprobaciones/api/swagger" // swagger docs
	"aprobaciones/internal/audit"
	"aprobaciones/internal/database"
	"aprobaciones/internal/handler"
	"aprobaciones/internal/middleware"
	"aprobaciones/internal/notification"
	"aprobaciones/internal/repository"
	"aprobaciones/internal/service"
	"aprobaciones/internal/websocket"
	"log"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Flujo de Aprobaciones API
// @version         1.0
// @description     Request-approval workflow with transactional status history and an independent audit event log.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dsn := "postgres://" + getenv("DB_USER", "postgres") + ":" + getenv("DB_PASSWORD", "postgres") +
		"@" + getenv("DB_HOST", "localhost") + ":" + getenv("DB_PORT", "5432") +
		"/" + getenv("DB_NAME", "aprobaciones") + "?sslmode=" + getenv("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := database.SeedDemoData(db); err != nil {
			log.Printf("WARNING: demo seed failed: %v", err)
		}
	}

	// The audit event log is optional at boot: a missing redis degrades
	// auditability, never availability.
	var recorder service.EventRecorder
	var historyService service.HistoryService
	redisDB, _ := strconv.Atoi(getenv("REDIS_DB", "0"))
	redisClient, err := audit.Open(getenv("REDIS_ADDR", "localhost:6379"), redisDB)
	if err != nil {
		log.Printf("WARNING: audit event log unavailable (%v), events will be dropped", err)
	} else {
		store := audit.NewRedisStore(redisClient)
		historyService = service.NewHistoryService(store)
		recorder = historyService
	}

	mailer := notification.NewMailer(notification.ConfigFromEnv())

	wsHub := websocket.NewHub()
	go wsHub.Run()

	userRepo := repository.NewUserRepository(db)
	typeRepo := repository.NewRequestTypeRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	userService := service.NewUserService(userRepo)
	typeService := service.NewRequestTypeService(typeRepo)
	requestService := service.NewRequestService(requestRepo, userRepo, typeRepo, recorder, mailer, wsHub)

	userHandler := handler.NewUserHandler(userService)
	typeHandler := handler.NewRequestTypeHandler(typeService)
	requestHandler := handler.NewRequestHandler(requestService)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	userHandler.RegisterRoutes(router.Group(""))
	typeHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))

	if historyService != nil {
		historyHandler := handler.NewHistoryHandler(historyService)
		historyHandler.RegisterRoutes(router.Group(""))
	}

	port := getenv("PORT", "8080")
	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
