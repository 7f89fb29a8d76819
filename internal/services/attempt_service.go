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

// AttemptService grades submissions and serves attempt reads.
type AttemptService interface {
	Submit(ctx context.Context, req *SubmitAttemptRequest, studentID uint) (*SubmitAttemptResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID uint, role models.RoleName) (*models.QuizAttempt, error)
	List(ctx context.Context, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	GetByStudent(ctx context.Context, studentID uint) ([]*models.QuizAttempt, error)
}

type SubmitAttemptRequest struct {
	QuizID    uint                   `json:"quiz_id" validate:"required"`
	TimeTaken int                    `json:"time_taken" validate:"min=0"` // seconds, client-reported
	Answers   []SubmittedAnswer      `json:"answers" validate:"dive"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SubmittedAnswer struct {
	QuestionID uint `json:"question_id" validate:"required"`
	OptionID   uint `json:"option_id" validate:"required"`
}

type SubmitAttemptResponse struct {
	AttemptID           uint              `json:"attempt_id"`
	Score               float64           `json:"score"`
	CorrectAnswers      int               `json:"correct_answers"`
	TotalQuestions      int               `json:"total_questions"`
	UnansweredQuestions int               `json:"unanswered_questions"`
	QuizStatus          models.QuizStatus `json:"quiz_status"`
}

type AttemptListResponse struct {
	Attempts []*models.QuizAttempt `json:"attempts"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewAttemptService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Submit grades a submission against the quiz's stored answer key and
// persists the attempt with one answer row per question.
//
// Grading walks the questions in stored order. The submitted option is only
// accepted if it belongs to the question it answers; an option from another
// question grades as incorrect but the row is still written, preserving what
// the student actually sent. Questions with no submitted answer get a row
// with a NULL option id.
func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, studentID uint) (*SubmitAttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	// Last submission wins when the same question appears twice.
	submitted := make(map[uint]uint, len(req.Answers))
	for _, answer := range req.Answers {
		submitted[answer.QuestionID] = answer.OptionID
	}

	totalQuestions := len(quiz.Questions)
	correctAnswers := 0
	answers := make([]*models.QuizAttemptAnswer, 0, totalQuestions)

	for _, question := range quiz.Questions {
		row := &models.QuizAttemptAnswer{QuestionID: question.ID}

		if optionID, ok := submitted[question.ID]; ok {
			id := optionID
			row.OptionID = &id
			for _, option := range question.Options {
				if option.ID == optionID {
					row.IsCorrect = option.IsCorrect
					break
				}
			}
		}

		if row.IsCorrect {
			correctAnswers++
		}
		answers = append(answers, row)
	}

	divisor := totalQuestions
	if divisor == 0 {
		divisor = 1
	}
	score := float64(correctAnswers) / float64(divisor) * 100

	now := time.Now().UTC()
	attempt := &models.QuizAttempt{
		QuizID:      quiz.ID,
		UserID:      studentID,
		Score:       score,
		TimeTaken:   req.TimeTaken,
		CompletedAt: now,
	}

	if err := s.repo.Attempt().CreateWithAnswers(ctx, attempt, answers); err != nil {
		return nil, fmt.Errorf("failed to persist attempt: %w", err)
	}

	// Counter refresh runs outside the attempt transaction; concurrent
	// submissions can briefly leave the counters behind the attempt rows.
	if err := s.repo.Quiz().RefreshAggregates(ctx, quiz.ID, models.QuizCompleted); err != nil {
		s.logger.Error("Failed to refresh quiz aggregates",
			"quiz_id", quiz.ID,
			"attempt_id", attempt.ID,
			"error", err)
	}

	// Computed from the raw submitted list, not the graded rows, so the two
	// counts can diverge when a submission references an unknown option.
	unanswered := totalQuestions - len(req.Answers)

	event := events.NewAttemptSubmittedEvent(
		attempt.ID, quiz.ID, quiz.Title, studentID,
		score, correctAnswers, totalQuestions, unanswered, now)
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt submitted event",
			"attempt_id", attempt.ID,
			"error", err)
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", quiz.ID,
		"student_id", studentID,
		"score", score)

	return &SubmitAttemptResponse{
		AttemptID:           attempt.ID,
		Score:               score,
		CorrectAnswers:      correctAnswers,
		TotalQuestions:      totalQuestions,
		UnansweredQuestions: unanswered,
		QuizStatus:          models.QuizCompleted,
	}, nil
}

func (s *attemptService) GetByIDWithDetails(ctx context.Context, id uint, userID uint, role models.RoleName) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}

	// Students see only their own attempts; mentors and admins see all.
	if role == models.RoleStudent && attempt.UserID != userID {
		return nil, NewPermissionError(userID, id, "attempt", "read", "not the attempt owner")
	}

	return attempt, nil
}

func (s *attemptService) List(ctx context.Context, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{
		Attempts: attempts,
		Total:    total,
		Page:     filters.Page,
		Limit:    filters.Limit,
	}, nil
}

func (s *attemptService) GetByStudent(ctx context.Context, studentID uint) ([]*models.QuizAttempt, error) {
	attempts, err := s.repo.Attempt().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	return attempts, nil
}
