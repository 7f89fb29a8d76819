package models

import (
	"time"
)

// QuizAttempt is one student's completed submission of a quiz. It is created
// exactly once per submission and mutated at most once afterwards, when a
// mentor records feedback.
type QuizAttempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;index"`
	UserID uint `json:"user_id" gorm:"not null;index"`

	Score       float64   `json:"score" gorm:"not null"`      // 0-100
	TimeTaken   int       `json:"time_taken" gorm:"not null"` // seconds, client-reported
	CompletedAt time.Time `json:"completed_at" gorm:"not null;index"`

	MentorFeedback *string `json:"mentor_feedback" gorm:"type:text"`
	MentorID       *uint   `json:"mentor_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz                `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	User    User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Mentor  *User               `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
	Answers []QuizAttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

// QuizAttemptAnswer snapshots one graded question of an attempt. A nil
// OptionID means the question was left unanswered; IsCorrect is the
// correctness at submission time, so later edits to the quiz do not rewrite
// history.
type QuizAttemptAnswer struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	AttemptID  uint  `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint  `json:"question_id" gorm:"not null;index"`
	OptionID   *uint `json:"option_id"`
	IsCorrect  bool  `json:"is_correct" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Option   *Option  `json:"option,omitempty" gorm:"foreignKey:OptionID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (QuizAttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}
