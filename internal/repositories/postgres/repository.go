package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/repositories"
)

// Repository is the PostgreSQL implementation of the aggregate repository.
type Repository struct {
	db *gorm.DB

	quiz         *QuizPostgreSQL
	attempt      *AttemptPostgreSQL
	user         *UserPostgreSQL
	notification *NotificationPostgreSQL
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		quiz:         NewQuizPostgreSQL(db),
		attempt:      NewAttemptPostgreSQL(db),
		user:         NewUserPostgreSQL(db),
		notification: NewNotificationPostgreSQL(db),
	}
}

func (r *Repository) Quiz() repositories.QuizRepository { return r.quiz }

func (r *Repository) Attempt() repositories.AttemptRepository { return r.attempt }

func (r *Repository) User() repositories.UserRepository { return r.user }

func (r *Repository) Notification() repositories.NotificationRepository { return r.notification }

// WithTransaction rebinds every entity repository to a single gorm
// transaction for the duration of fn.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func applyPagination(query *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	return query.Limit(limit).Offset((page - 1) * limit)
}
