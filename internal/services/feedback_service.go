package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

// FeedbackService records mentor feedback on a graded attempt and notifies
// the student by email.
type FeedbackService interface {
	Record(ctx context.Context, req *RecordFeedbackRequest, mentorID uint) (*models.QuizAttempt, error)
}

type RecordFeedbackRequest struct {
	AttemptID uint   `json:"attempt_id" validate:"required"`
	Feedback  string `json:"feedback" validate:"required,min=1,max=5000"`
}

type feedbackService struct {
	repo          repositories.Repository
	notifications NotificationService
	publisher     events.EventPublisher
	logger        *slog.Logger
	validator     *utils.Validator
}

func NewFeedbackService(repo repositories.Repository, notifications NotificationService, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) FeedbackService {
	return &feedbackService{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		validator:     validator,
	}
}

// Record writes the feedback onto the attempt, moves the owning quiz to
// REVIEWED and emails the student. The email is sent after the writes
// commit; a delivery failure is returned to the caller but the persisted
// feedback and status stand.
func (s *feedbackService) Record(ctx context.Context, req *RecordFeedbackRequest, mentorID uint) (*models.QuizAttempt, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}

	mentor, err := s.repo.User().GetByID(ctx, mentorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to load mentor: %w", err)
	}

	if err := s.repo.Attempt().UpdateFeedback(ctx, attempt.ID, req.Feedback, mentor.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	// Status moves for the whole quiz, not just this attempt. Other
	// attempts on the same quiz still pending review read as REVIEWED after
	// this point.
	if err := s.repo.Quiz().UpdateStatus(ctx, attempt.QuizID, models.QuizReviewed); err != nil {
		return nil, fmt.Errorf("failed to update quiz status: %w", err)
	}

	attempt.MentorFeedback = &req.Feedback
	attempt.MentorID = &mentor.ID
	attempt.Quiz.Status = models.QuizReviewed

	event := events.NewAttemptReviewedEvent(
		attempt.ID, attempt.QuizID, attempt.Quiz.Title,
		attempt.UserID, mentor.ID, time.Now().UTC())
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt reviewed event",
			"attempt_id", attempt.ID,
			"error", err)
	}

	s.logger.Info("Feedback recorded",
		"attempt_id", attempt.ID,
		"quiz_id", attempt.QuizID,
		"mentor_id", mentor.ID)

	if err := s.notifications.SendFeedbackReceived(ctx, attempt, mentor, req.Feedback); err != nil {
		s.logger.Error("Failed to send feedback email",
			"attempt_id", attempt.ID,
			"student_id", attempt.UserID,
			"error", err)
		return nil, fmt.Errorf("feedback saved but notification failed: %w", err)
	}

	return attempt, nil
}
