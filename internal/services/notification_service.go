package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/quizdesk/quiz-service/internal/mail"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

// NotificationService composes and sends transactional emails, keeping a
// Notification row per message as the delivery audit trail.
type NotificationService interface {
	SendWelcome(ctx context.Context, user *models.User) error
	SendFeedbackReceived(ctx context.Context, attempt *models.QuizAttempt, mentor *models.User, feedback string) error
	GetUserNotifications(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error)
}

type notificationService struct {
	repo   repositories.Repository
	mailer mail.Mailer
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, mailer mail.Mailer, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		mailer: mailer,
		logger: logger,
	}
}

func (s *notificationService) SendWelcome(ctx context.Context, user *models.User) error {
	subject := "Welcome to QuizDesk"
	body := fmt.Sprintf(
		"<h2>Welcome, %s!</h2><p>Your account is ready. Log in to browse the quiz catalog and start your first attempt.</p>",
		html.EscapeString(user.Name))

	notification := &models.Notification{
		UserID:  user.ID,
		Type:    models.NotificationWelcome,
		Subject: subject,
		Body:    body,
	}

	return s.deliver(ctx, notification, user.Email)
}

func (s *notificationService) SendFeedbackReceived(ctx context.Context, attempt *models.QuizAttempt, mentor *models.User, feedback string) error {
	subject := fmt.Sprintf("Feedback on your quiz: %s", attempt.Quiz.Title)
	body := fmt.Sprintf(
		"<h2>Your attempt has been reviewed</h2>"+
			"<p><strong>%s</strong> reviewed your attempt on <strong>%s</strong> (score: %.0f%%).</p>"+
			"<blockquote>%s</blockquote>",
		html.EscapeString(mentor.Name),
		html.EscapeString(attempt.Quiz.Title),
		attempt.Score,
		html.EscapeString(feedback))

	metadata, _ := json.Marshal(map[string]interface{}{
		"score":     attempt.Score,
		"mentor_id": mentor.ID,
	})

	notification := &models.Notification{
		UserID:    attempt.UserID,
		Type:      models.NotificationFeedbackReceived,
		Subject:   subject,
		Body:      body,
		AttemptID: &attempt.ID,
		QuizID:    &attempt.QuizID,
		Metadata:  datatypes.JSON(metadata),
	}

	return s.deliver(ctx, notification, attempt.User.Email)
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	notifications, err := s.repo.Notification().GetByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notifications, nil
}

// deliver records the notification first, then hands it to the mailer and
// marks the outcome. The row exists even when delivery fails so operators
// can replay from the audit trail.
func (s *notificationService) deliver(ctx context.Context, notification *models.Notification, email string) error {
	if err := s.repo.Notification().Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	if err := s.mailer.Send(ctx, email, notification.Subject, notification.Body); err != nil {
		if markErr := s.repo.Notification().MarkFailed(ctx, notification.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to mark notification failed",
				"notification_id", notification.ID,
				"error", markErr)
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	if err := s.repo.Notification().MarkSent(ctx, notification.ID); err != nil {
		s.logger.Error("Failed to mark notification sent",
			"notification_id", notification.ID,
			"error", err)
	}

	s.logger.Info("Notification sent",
		"notification_id", notification.ID,
		"type", notification.Type,
		"user_id", notification.UserID)

	return nil
}
