package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationWelcome          NotificationType = "welcome"
	NotificationFeedbackReceived NotificationType = "feedback_received"
)

// Notification is the audit record of an email handed to the mailer. The
// workflow is fire-and-forget: a failed send leaves SentAt nil but never
// rolls back the state change that triggered it.
type Notification struct {
	ID     uint             `json:"id" gorm:"primaryKey"`
	UserID uint             `json:"user_id" gorm:"not null;index"`
	Type   NotificationType `json:"type" gorm:"not null;index"`

	Subject string `json:"subject" gorm:"not null;size:255"`
	Body    string `json:"body" gorm:"type:text"`

	// Related entities
	AttemptID *uint `json:"attempt_id" gorm:"index"`
	QuizID    *uint `json:"quiz_id" gorm:"index"`

	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	SentAt    *time.Time `json:"sent_at"`
	LastError *string    `json:"last_error" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User    User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Attempt *QuizAttempt `json:"attempt,omitempty" gorm:"foreignKey:AttemptID"`
}

func (Notification) TableName() string {
	return "notifications"
}
