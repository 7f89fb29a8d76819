package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) *AttemptPostgreSQL {
	return &AttemptPostgreSQL{db: db}
}

// CreateWithAnswers writes the attempt and its answer rows in one
// transaction, so a half-graded submission can never be observed.
func (a *AttemptPostgreSQL) CreateWithAnswers(ctx context.Context, attempt *models.QuizAttempt, answers []*models.QuizAttemptAnswer) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for _, answer := range answers {
			answer.AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Preload("Quiz").
		Preload("User").
		Preload("Mentor").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_attempt_answers.id ASC")
		}).
		Preload("Answers.Question").
		Preload("Answers.Option").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Page, filters.Limit).
		Order("quiz_attempts.completed_at DESC")
	if err := query.Preload("Quiz").Preload("User").Preload("Mentor").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, studentID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ?", studentID).
		Order("completed_at DESC").
		Preload("Quiz").
		Preload("Mentor").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) UpdateFeedback(ctx context.Context, attemptID uint, feedback string, mentorID uint) error {
	result := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"mentor_feedback": feedback,
			"mentor_id":       mentorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *AttemptPostgreSQL) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.QuizID != nil {
		query = query.Where("quiz_attempts.quiz_id = ?", *filters.QuizID)
	}
	if filters.StudentID != nil {
		query = query.Where("quiz_attempts.user_id = ?", *filters.StudentID)
	}
	if filters.HasFeedback != nil {
		if *filters.HasFeedback {
			query = query.Where("quiz_attempts.mentor_feedback IS NOT NULL")
		} else {
			query = query.Where("quiz_attempts.mentor_feedback IS NULL")
		}
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.
			Joins("JOIN users ON users.id = quiz_attempts.user_id").
			Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
			Where("users.name ILIKE ? OR quizzes.title ILIKE ?", pattern, pattern)
	}
	return query
}
