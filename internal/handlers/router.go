package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/auth"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type HandlerManager struct {
	tokens *auth.TokenManager

	authHandler         *AuthHandler
	quizHandler         *QuizHandler
	attemptHandler      *AttemptHandler
	userHandler         *UserHandler
	notificationHandler *NotificationHandler
}

func NewHandlerManager(
	tokens *auth.TokenManager,
	authService services.AuthService,
	quizService services.QuizService,
	attemptService services.AttemptService,
	feedbackService services.FeedbackService,
	exportService services.ExportService,
	userService services.UserService,
	notificationService services.NotificationService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		tokens:              tokens,
		authHandler:         NewAuthHandler(authService, logger),
		quizHandler:         NewQuizHandler(quizService, exportService, logger),
		attemptHandler:      NewAttemptHandler(attemptService, feedbackService, logger),
		userHandler:         NewUserHandler(userService, logger),
		notificationHandler: NewNotificationHandler(notificationService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", hm.authHandler.Register)
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.GET("/me", AuthMiddleware(hm.tokens), hm.authHandler.Me)
		}

		quizzes := v1.Group("/quizzes", AuthMiddleware(hm.tokens))
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/full", hm.quizHandler.GetQuizWithQuestions)

			mentors := RequireRole(models.RoleMentor, models.RoleAdmin)
			quizzes.POST("", mentors, hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", mentors, hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", mentors, hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/export", mentors, hm.quizHandler.ExportQuizResults)
		}

		attempts := v1.Group("/attempts", AuthMiddleware(hm.tokens))
		{
			attempts.POST("", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/my", hm.attemptHandler.GetMyAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)

			mentors := RequireRole(models.RoleMentor, models.RoleAdmin)
			attempts.GET("", mentors, hm.attemptHandler.ListAttempts)
			attempts.POST("/:id/feedback", mentors, hm.attemptHandler.RecordFeedback)
		}

		v1.GET("/notifications", AuthMiddleware(hm.tokens), hm.notificationHandler.GetMyNotifications)

		admin := v1.Group("", AuthMiddleware(hm.tokens), RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", hm.userHandler.ListUsers)
			admin.GET("/users/:id", hm.userHandler.GetUser)
			admin.PUT("/users/:id/active", hm.userHandler.SetUserActive)
			admin.GET("/roles", hm.userHandler.ListRoles)
			admin.PUT("/roles/:id/enabled", hm.userHandler.SetRoleEnabled)
		}
	}
}
