package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	EventUserRegistered   EventType = "user.registered"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptReviewed  EventType = "attempt.reviewed"
)

// NotificationEvent is the envelope shared by all published events.
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type UserRegisteredEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type AttemptSubmittedEvent struct {
	AttemptID           uint      `json:"attempt_id"`
	QuizID              uint      `json:"quiz_id"`
	QuizTitle           string    `json:"quiz_title"`
	StudentID           uint      `json:"student_id"`
	Score               float64   `json:"score"`
	CorrectAnswers      int       `json:"correct_answers"`
	TotalQuestions      int       `json:"total_questions"`
	UnansweredQuestions int       `json:"unanswered_questions"`
	SubmittedAt         time.Time `json:"submitted_at"`
}

type AttemptReviewedEvent struct {
	AttemptID  uint      `json:"attempt_id"`
	QuizID     uint      `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title"`
	StudentID  uint      `json:"student_id"`
	MentorID   uint      `json:"mentor_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewUserRegisteredEvent(userID uint, email, name, role string) *NotificationEvent {
	return newEvent(EventUserRegistered, UserRegisteredEvent{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
	})
}

func NewAttemptSubmittedEvent(attemptID, quizID uint, quizTitle string, studentID uint, score float64, correct, total, unanswered int, submittedAt time.Time) *NotificationEvent {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:           attemptID,
		QuizID:              quizID,
		QuizTitle:           quizTitle,
		StudentID:           studentID,
		Score:               score,
		CorrectAnswers:      correct,
		TotalQuestions:      total,
		UnansweredQuestions: unanswered,
		SubmittedAt:         submittedAt,
	})
}

func NewAttemptReviewedEvent(attemptID, quizID uint, quizTitle string, studentID, mentorID uint, reviewedAt time.Time) *NotificationEvent {
	return newEvent(EventAttemptReviewed, AttemptReviewedEvent{
		AttemptID:  attemptID,
		QuizID:     quizID,
		QuizTitle:  quizTitle,
		StudentID:  studentID,
		MentorID:   mentorID,
		ReviewedAt: reviewedAt,
	})
}
