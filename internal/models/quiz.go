package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizPublished QuizStatus = "PUBLISHED"
	QuizCompleted QuizStatus = "COMPLETED"
	QuizReviewed  QuizStatus = "REVIEWED"
)

type QuestionType string

const (
	// MultipleChoice is the only question type today. The tag exists so new
	// types can be added without a schema change.
	MultipleChoice QuestionType = "multiple_choice"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Duration    int        `json:"duration" gorm:"not null" validate:"required,min=1,max=300"` // minutes
	Category    string     `json:"category" gorm:"size:100;index"`
	Status      QuizStatus `json:"status" gorm:"default:PUBLISHED;index" validate:"omitempty,quiz_status"`

	// Denormalized counters, recomputed by the aggregate refresh after each
	// submission. Subject to a lost-update race under concurrent submissions;
	// see the concurrency notes in DESIGN.md.
	TotalQuestions int     `json:"total_questions" gorm:"default:0"`
	AvgScore       float64 `json:"avg_score" gorm:"default:0"`
	Attempts       int     `json:"attempts" gorm:"default:0"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions    []Question    `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	QuizAttempts []QuizAttempt `json:"-" gorm:"foreignKey:QuizID"`
	Creator      User          `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Points int          `json:"points" gorm:"not null;default:1" validate:"required,min=1"`
	Type   QuestionType `json:"type" gorm:"default:multiple_choice"`
	Order  int          `json:"order" gorm:"column:position;not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}
