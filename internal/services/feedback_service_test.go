package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/mail"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/utils"
)

func reviewedAttemptFixture() *models.QuizAttempt {
	return &models.QuizAttempt{
		ID:     5,
		QuizID: 1,
		UserID: 7,
		Score:  75,
		Quiz:   models.Quiz{ID: 1, Title: "Go Basics", Status: models.QuizCompleted},
		User:   models.User{ID: 7, Name: "Dana", Email: "dana@example.com"},
	}
}

func newFeedbackServiceForTest(repo *mockRepository, mailer *mail.MockMailer) (FeedbackService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	notifications := NewNotificationService(repo, mailer, logger)
	svc := NewFeedbackService(repo, notifications, publisher, logger, utils.NewValidator())
	return svc, publisher
}

func TestFeedbackService_Record(t *testing.T) {
	repo := newMockRepository()
	mailer := mail.NewMockMailer()
	svc, publisher := newFeedbackServiceForTest(repo, mailer)

	repo.attempt.On("GetByIDWithDetails", mock.Anything, uint(5)).Return(reviewedAttemptFixture(), nil)
	repo.user.On("GetByID", mock.Anything, uint(20)).Return(&models.User{ID: 20, Name: "Mentor Max"}, nil)
	repo.attempt.On("UpdateFeedback", mock.Anything, uint(5), "Nice work", uint(20)).Return(nil)
	repo.quiz.On("UpdateStatus", mock.Anything, uint(1), models.QuizReviewed).Return(nil)
	repo.notification.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Notification).ID = 9
		}).
		Return(nil)
	repo.notification.On("MarkSent", mock.Anything, uint(9)).Return(nil)

	attempt, err := svc.Record(context.Background(), &RecordFeedbackRequest{
		AttemptID: 5,
		Feedback:  "Nice work",
	}, 20)

	require.NoError(t, err)
	require.NotNil(t, attempt.MentorFeedback)
	assert.Equal(t, "Nice work", *attempt.MentorFeedback)
	require.NotNil(t, attempt.MentorID)
	assert.Equal(t, uint(20), *attempt.MentorID)
	assert.Equal(t, models.QuizReviewed, attempt.Quiz.Status)

	repo.quiz.AssertCalled(t, "UpdateStatus", mock.Anything, uint(1), models.QuizReviewed)

	require.Len(t, mailer.Messages, 1)
	assert.Equal(t, "dana@example.com", mailer.Messages[0].To)
	assert.Contains(t, mailer.Messages[0].Body, "Nice work")
	assert.Contains(t, mailer.Messages[0].Subject, "Go Basics")

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptReviewed, published[0].Type)
}

func TestFeedbackService_Record_MailFailureKeepsWrites(t *testing.T) {
	repo := newMockRepository()
	mailer := mail.NewMockMailer()
	mailer.Err = assert.AnError
	svc, _ := newFeedbackServiceForTest(repo, mailer)

	repo.attempt.On("GetByIDWithDetails", mock.Anything, uint(5)).Return(reviewedAttemptFixture(), nil)
	repo.user.On("GetByID", mock.Anything, uint(20)).Return(&models.User{ID: 20, Name: "Mentor Max"}, nil)
	repo.attempt.On("UpdateFeedback", mock.Anything, uint(5), "Nice work", uint(20)).Return(nil)
	repo.quiz.On("UpdateStatus", mock.Anything, uint(1), models.QuizReviewed).Return(nil)
	repo.notification.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.notification.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Record(context.Background(), &RecordFeedbackRequest{
		AttemptID: 5,
		Feedback:  "Nice work",
	}, 20)

	// The caller learns about the failed email, the persisted feedback and
	// quiz status stay in place.
	require.Error(t, err)
	repo.attempt.AssertCalled(t, "UpdateFeedback", mock.Anything, uint(5), "Nice work", uint(20))
	repo.quiz.AssertCalled(t, "UpdateStatus", mock.Anything, uint(1), models.QuizReviewed)
}

func TestFeedbackService_Record_AttemptNotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newFeedbackServiceForTest(repo, mail.NewMockMailer())

	repo.attempt.On("GetByIDWithDetails", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Record(context.Background(), &RecordFeedbackRequest{
		AttemptID: 99,
		Feedback:  "text",
	}, 20)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestFeedbackService_Record_MentorNotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newFeedbackServiceForTest(repo, mail.NewMockMailer())

	repo.attempt.On("GetByIDWithDetails", mock.Anything, uint(5)).Return(reviewedAttemptFixture(), nil)
	repo.user.On("GetByID", mock.Anything, uint(77)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Record(context.Background(), &RecordFeedbackRequest{
		AttemptID: 5,
		Feedback:  "text",
	}, 77)
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestFeedbackService_Record_ValidationError(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newFeedbackServiceForTest(repo, mail.NewMockMailer())

	_, err := svc.Record(context.Background(), &RecordFeedbackRequest{AttemptID: 5}, 20)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
