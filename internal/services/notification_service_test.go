package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizdesk/quiz-service/internal/mail"
	"github.com/quizdesk/quiz-service/internal/models"
)

func TestNotificationService_SendWelcome(t *testing.T) {
	repo := newMockRepository()
	mailer := mail.NewMockMailer()
	svc := NewNotificationService(repo, mailer, testLogger())

	var recorded *models.Notification
	repo.notification.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*models.Notification)
			recorded.ID = 1
		}).
		Return(nil)
	repo.notification.On("MarkSent", mock.Anything, uint(1)).Return(nil)

	user := &models.User{ID: 7, Name: "Dana", Email: "dana@example.com"}
	err := svc.SendWelcome(context.Background(), user)

	require.NoError(t, err)
	require.NotNil(t, recorded)
	assert.Equal(t, models.NotificationWelcome, recorded.Type)
	assert.Equal(t, uint(7), recorded.UserID)

	require.Len(t, mailer.Messages, 1)
	assert.Equal(t, "dana@example.com", mailer.Messages[0].To)
	assert.Contains(t, mailer.Messages[0].Body, "Dana")
}

func TestNotificationService_SendFeedbackReceived_EscapesContent(t *testing.T) {
	repo := newMockRepository()
	mailer := mail.NewMockMailer()
	svc := NewNotificationService(repo, mailer, testLogger())

	repo.notification.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Notification).ID = 2
		}).
		Return(nil)
	repo.notification.On("MarkSent", mock.Anything, uint(2)).Return(nil)

	attempt := reviewedAttemptFixture()
	mentor := &models.User{ID: 20, Name: "Mentor Max"}
	err := svc.SendFeedbackReceived(context.Background(), attempt, mentor, "<script>alert(1)</script> good job")

	require.NoError(t, err)
	require.Len(t, mailer.Messages, 1)
	assert.NotContains(t, mailer.Messages[0].Body, "<script>")
	assert.Contains(t, mailer.Messages[0].Body, "good job")
}

func TestNotificationService_DeliveryFailureIsRecorded(t *testing.T) {
	repo := newMockRepository()
	mailer := mail.NewMockMailer()
	mailer.Err = assert.AnError
	svc := NewNotificationService(repo, mailer, testLogger())

	repo.notification.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Notification).ID = 3
		}).
		Return(nil)
	repo.notification.On("MarkFailed", mock.Anything, uint(3), mock.Anything).Return(nil)

	user := &models.User{ID: 7, Name: "Dana", Email: "dana@example.com"}
	err := svc.SendWelcome(context.Background(), user)

	require.Error(t, err)
	repo.notification.AssertCalled(t, "MarkFailed", mock.Anything, uint(3), mock.Anything)
	repo.notification.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}
