package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizdesk/quiz-service/internal/cache"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

// QuizService owns the quiz catalog: authoring CRUD plus the cached read
// path students take a quiz from.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, creatorID uint) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	// GetWithQuestions returns the quiz with ordered questions and options.
	// Served cache-aside; any write to the quiz invalidates the entry.
	GetWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID uint, role models.RoleName) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, userID uint, role models.RoleName) error
}

type CreateQuizRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Duration    int                     `json:"duration" validate:"required,min=1,max=300"`
	Category    string                  `json:"category" validate:"omitempty,max=100"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	Text    string                `json:"text" validate:"required"`
	Points  int                   `json:"points" validate:"required,min=1"`
	Options []CreateOptionRequest `json:"options" validate:"required,min=2,dive"`
}

type CreateOptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type UpdateQuizRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Duration    *int                    `json:"duration" validate:"omitempty,min=1,max=300"`
	Category    *string                 `json:"category" validate:"omitempty,max=100"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"omitempty,min=1,dive"`
}

type QuizListResponse struct {
	Quizzes []*models.Quiz `json:"quizzes"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

const quizCacheTTL = 10 * time.Minute

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID uint) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateAnswerKeys(req.Questions); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:          req.Title,
		Description:    req.Description,
		Duration:       req.Duration,
		Category:       req.Category,
		Status:         models.QuizPublished,
		TotalQuestions: len(req.Questions),
		CreatedBy:      creatorID,
		Questions:      buildQuestions(req.Questions),
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"creator_id", creatorID,
		"questions", len(quiz.Questions))

	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	key := quizCacheKey(id)

	var cached models.Quiz
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Quiz cache read failed", "quiz_id", id, "error", err)
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	if err := s.cache.Set(ctx, key, quiz, quizCacheTTL); err != nil {
		s.logger.Warn("Quiz cache write failed", "quiz_id", id, "error", err)
	}

	return quiz, nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) (*QuizListResponse, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return &QuizListResponse{
		Quizzes: quizzes,
		Total:   total,
		Page:    filters.Page,
		Limit:   filters.Limit,
	}, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID uint, role models.RoleName) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if len(req.Questions) > 0 {
		if err := validateAnswerKeys(req.Questions); err != nil {
			return nil, err
		}
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	if err := s.canManage(quiz, userID, role, "update"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Duration != nil {
		quiz.Duration = *req.Duration
	}
	if req.Category != nil {
		quiz.Category = *req.Category
	}
	if len(req.Questions) > 0 {
		// Replacing questions rewrites the whole set; partial question edits
		// are not supported.
		quiz.Questions = buildQuestions(req.Questions)
		quiz.TotalQuestions = len(req.Questions)
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Quiz updated", "quiz_id", id, "user_id", userID)

	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint, userID uint, role models.RoleName) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to load quiz: %w", err)
	}

	if err := s.canManage(quiz, userID, role, "delete"); err != nil {
		return err
	}

	attempts, err := s.repo.Attempt().CountByQuiz(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	if attempts > 0 {
		return ErrQuizNotDeletable
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Quiz deleted", "quiz_id", id, "user_id", userID)

	return nil
}

func (s *quizService) canManage(quiz *models.Quiz, userID uint, role models.RoleName, action string) error {
	if role == models.RoleAdmin || quiz.CreatedBy == userID {
		return nil
	}
	return NewPermissionError(userID, quiz.ID, "quiz", action, "not the quiz creator")
}

func (s *quizService) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, quizCacheKey(id)); err != nil {
		s.logger.Warn("Quiz cache invalidation failed", "quiz_id", id, "error", err)
	}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("quiz:%d:full", id)
}

// validateAnswerKeys rejects questions without a usable answer key. Every
// question needs at least two options and exactly one marked correct.
func validateAnswerKeys(questions []CreateQuestionRequest) error {
	for i, question := range questions {
		correct := 0
		for _, option := range question.Options {
			if option.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return NewValidationError(
				fmt.Sprintf("questions[%d].options", i),
				"must have exactly one correct option",
				correct,
			)
		}
	}
	return nil
}

func buildQuestions(reqs []CreateQuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(reqs))
	for i, q := range reqs {
		options := make([]models.Option, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, models.Option{
				Text:      o.Text,
				IsCorrect: o.IsCorrect,
			})
		}
		questions = append(questions, models.Question{
			Text:    q.Text,
			Points:  q.Points,
			Type:    models.MultipleChoice,
			Order:   i,
			Options: options,
		})
	}
	return questions
}
