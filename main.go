package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-portal/config"
	"quiz-portal/internal/handlers"
	"quiz-portal/internal/middleware"
	"quiz-portal/internal/repository"
	"quiz-portal/internal/service"
	"quiz-portal/internal/session"
	"quiz-portal/pkg/cache"
	"quiz-portal/pkg/database"
	"quiz-portal/pkg/email"
	"quiz-portal/pkg/messaging"
	"quiz-portal/pkg/storage"

	_ "quiz-portal/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Quiz Portal API
// @version 1.0
// @description Quiz portal with OTP verified registration and paginated quizzes.
// @termsOfService http://swagger.io/terms/

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded")

	pgClient, err := database.NewPostgresClient(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("Connected to PostgreSQL")
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgClient.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize PostgreSQL schema: %v", err)
	}
	log.Println("PostgreSQL schema initialized")
	cancel()

	var sessions session.Store
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Sessions will be kept in memory")
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	} else {
		log.Println("Connected to Redis")
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
	}

	smtpClient := email.NewSMTPClient(&cfg.SMTP)
	log.Println("SMTP client initialized")

	var fileStorage service.ObjectStorage
	s3Client, err := storage.NewS3Client(&cfg.S3)
	if err != nil {
		log.Printf("Warning: Failed to connect to S3: %v", err)
	} else {
		s3Ctx, s3Cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Client.EnsureBucket(s3Ctx); err != nil {
			log.Printf("Warning: S3 bucket unavailable: %v", err)
		} else {
			log.Printf("S3 bucket %s ready", s3Client.Bucket())
			fileStorage = s3Client
		}
		s3Cancel()
	}

	userRepo := repository.NewUserRepository(pgClient.GetDB())
	quizRepo := repository.NewQuizRepository(pgClient.GetDB())
	submissionRepo := repository.NewSubmissionRepository(pgClient.GetDB())

	var publisher service.EventPublisher
	rabbitClient, err := messaging.NewRabbitMQClient(&cfg.RabbitMQ)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		log.Println("Welcome and new question emails are disabled")
	} else {
		log.Println("Connected to RabbitMQ")
		defer rabbitClient.Close()
		publisher = rabbitClient

		notificationService := service.NewNotificationService(smtpClient, userRepo)
		startConsumers(rabbitClient, notificationService)
	}

	otpService := service.NewOTPService(smtpClient, cfg.OTP.Length, cfg.OTP.Expiry)
	authService := service.NewAuthService(userRepo, otpService, publisher)
	profileService := service.NewProfileService(userRepo, otpService, fileStorage, cfg.S3.Bucket)
	quizService := service.NewQuizService(quizRepo, submissionRepo, publisher, cfg.Quiz.PageSize)

	routes := &handlers.Routes{
		Auth:     handlers.NewAuthHandler(authService),
		Profile:  handlers.NewProfileHandler(profileService),
		Quiz:     handlers.NewQuizHandler(quizService),
		Admin:    handlers.NewAdminHandler(quizService),
		AdminKey: cfg.Admin.APIKey,
	}
	if cfg.Admin.APIKey == "" {
		log.Println("ADMIN_API_KEY is not set, admin routes are disabled")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "quiz-portal",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := pgClient.GetDB().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Register(router, middleware.Session(sessions, middleware.SessionOptions{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}))

	addr := cfg.GetServerAddress()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	log.Printf("Quiz Portal starting on %s", addr)
	log.Printf("Swagger doc available at http://%s/swagger/index.html", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}

	log.Println("Quiz Portal stopped")
}

func startConsumers(rabbitClient *messaging.RabbitMQClient, notificationService *service.NotificationService) {
	ctx := context.Background()

	go rabbitClient.ConsumeQueue(ctx, messaging.QueueUserRegistered, notificationService.HandleUserRegistered)
	go rabbitClient.ConsumeQueue(ctx, messaging.QueueQuestionCreated, notificationService.HandleQuestionCreated)

	log.Println("All RabbitMQ consumers started")
}
