package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/quizdesk/quiz-service/internal/models"
)

func TestExportService_ExportQuizResults(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger())

	feedback := "solid"
	attempts := []*models.QuizAttempt{
		{
			ID:          1,
			QuizID:      1,
			UserID:      7,
			Score:       80,
			TimeTaken:   95,
			CompletedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			User:        models.User{ID: 7, Name: "Dana", Email: "dana@example.com"},
		},
		{
			ID:             2,
			QuizID:         1,
			UserID:         8,
			Score:          50,
			TimeTaken:      130,
			CompletedAt:    time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
			MentorFeedback: &feedback,
			Mentor:         &models.User{ID: 20, Name: "Mentor Max"},
			User:           models.User{ID: 8, Name: "Eli", Email: "eli@example.com"},
		},
	}

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(&models.Quiz{ID: 1, CreatedBy: 3}, nil)
	repo.attempt.On("List", mock.Anything, mock.Anything).Return(attempts, int64(2), nil)

	data, err := svc.ExportQuizResults(context.Background(), 1, 20, models.RoleMentor)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Attempt ID", rows[0][0])
	assert.Equal(t, "Dana", rows[1][1])
	assert.Equal(t, "pending", rows[1][6])
	assert.Equal(t, "graded", rows[2][6])
	assert.Equal(t, "Mentor Max", rows[2][7])
}

func TestExportService_ExportQuizResults_DeniedForStudent(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, testLogger())

	repo.quiz.On("GetByID", mock.Anything, uint(1)).Return(&models.Quiz{ID: 1, CreatedBy: 3}, nil)

	_, err := svc.ExportQuizResults(context.Background(), 1, 7, models.RoleStudent)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	repo.attempt.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
