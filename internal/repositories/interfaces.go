package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	Category  *string            `json:"category"`
	CreatedBy *uint              `json:"created_by"`
	Search    string             `json:"search"` // case-insensitive substring over title
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

// AttemptFilters shapes the mentor review queue and student history reads.
// HasFeedback distinguishes pending (false) from graded (true) attempts;
// Search matches student name or quiz title, case-insensitively. Results are
// always ordered by completion time descending.
type AttemptFilters struct {
	QuizID      *uint  `json:"quiz_id"`
	StudentID   *uint  `json:"student_id"`
	HasFeedback *bool  `json:"has_feedback"`
	Search      string `json:"search"`
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
}

type UserFilters struct {
	RoleID *uint  `json:"role_id"`
	Search string `json:"search"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// ===== REPOSITORY INTERFACES =====

// QuizRepository covers the quiz catalog plus the aggregate write-back after
// each submission.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	// GetByIDWithQuestions loads the quiz with its questions in stored order
	// and each question's options: the scorer's answer key.
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
	UpdateStatus(ctx context.Context, id uint, status models.QuizStatus) error
	// RefreshAggregates recomputes the attempt count and mean score for the
	// quiz from its attempt rows (aggregation runs in the database) and
	// writes them back together with the given status.
	RefreshAggregates(ctx context.Context, quizID uint, status models.QuizStatus) error
}

type AttemptRepository interface {
	// CreateWithAnswers persists the attempt and its per-question answer rows
	// in one transaction.
	CreateWithAnswers(ctx context.Context, attempt *models.QuizAttempt, answers []*models.QuizAttemptAnswer) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.QuizAttempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetByStudent(ctx context.Context, studentID uint) ([]*models.QuizAttempt, error)
	UpdateFeedback(ctx context.Context, attemptID uint, feedback string, mentorID uint) error
	CountByQuiz(ctx context.Context, quizID uint) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error

	GetRole(ctx context.Context, id uint) (*models.Role, error)
	GetRoleByName(ctx context.Context, name models.RoleName) (*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	SetRoleEnabled(ctx context.Context, roleID uint, enabled bool) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkSent(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, sendErr string) error
	GetByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error)
}

// Repository aggregates entity repositories so services take a single
// dependency.
type Repository interface {
	Quiz() QuizRepository
	Attempt() AttemptRepository
	User() UserRepository
	Notification() NotificationRepository

	// WithTransaction runs fn against a Repository bound to one transaction,
	// committing on nil and rolling back on error.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}

// IsNotFoundError reports whether err is the persistence layer's missing-row
// error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
