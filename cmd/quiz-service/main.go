package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/auth"
	"github.com/quizdesk/quiz-service/internal/cache"
	"github.com/quizdesk/quiz-service/internal/config"
	"github.com/quizdesk/quiz-service/internal/handlers"
	"github.com/quizdesk/quiz-service/internal/mail"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories/postgres"
	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
	"github.com/quizdesk/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.QuizAttempt{},
		&models.QuizAttemptAnswer{},
		&models.Notification{},
	); err != nil {
		logger.LogError(err, "Failed to run migrations")
		log.Fatal(err)
	}

	if err := seedRoles(db); err != nil {
		logger.LogError(err, "Failed to seed roles")
		log.Fatal(err)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, quiz cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		log.Fatal(err)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	mailer := mail.NewSMTPMailer(cfg.SMTP)
	validator := utils.NewValidator()

	notificationService := services.NewNotificationService(repo, mailer, slogLogger)
	authService := services.NewAuthService(repo, tokens, publisher, notificationService, slogLogger, validator)
	quizService := services.NewQuizService(repo, cacheService, slogLogger, validator)
	attemptService := services.NewAttemptService(repo, publisher, slogLogger, validator)
	feedbackService := services.NewFeedbackService(repo, notificationService, publisher, slogLogger, validator)
	exportService := services.NewExportService(repo, slogLogger)
	userService := services.NewUserService(repo, slogLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		tokens,
		authService,
		quizService,
		attemptService,
		feedbackService,
		exportService,
		userService,
		notificationService,
		logger,
	)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.LogError(err, "Server stopped")
		log.Fatal(err)
	}
}

// seedRoles makes sure the three built-in roles exist before the first
// registration comes in.
func seedRoles(db *gorm.DB) error {
	for _, name := range []models.RoleName{models.RoleStudent, models.RoleMentor, models.RoleAdmin} {
		role := models.Role{Name: name, Enabled: true}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
