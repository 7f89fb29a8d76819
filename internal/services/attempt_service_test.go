package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/utils"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// threeQuestionQuiz builds a quiz where question i has options with IDs
// 10*i+1..10*i+3 and the first option is the correct one.
func threeQuestionQuiz() *models.Quiz {
	quiz := &models.Quiz{
		ID:     1,
		Title:  "Go Basics",
		Status: models.QuizPublished,
	}
	for q := 1; q <= 3; q++ {
		question := models.Question{
			ID:     uint(q),
			QuizID: 1,
			Text:   "question",
			Points: 1,
			Order:  q - 1,
		}
		for o := 1; o <= 3; o++ {
			question.Options = append(question.Options, models.Option{
				ID:         uint(q*10 + o),
				QuestionID: uint(q),
				Text:       "option",
				IsCorrect:  o == 1,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	quiz.TotalQuestions = len(quiz.Questions)
	return quiz
}

func newAttemptServiceForTest(repo *mockRepository) (AttemptService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewAttemptService(repo, publisher, logger, utils.NewValidator())
	return svc, publisher
}

func TestAttemptService_Submit_AllCorrect(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newAttemptServiceForTest(repo)

	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(threeQuestionQuiz(), nil)

	var savedAnswers []*models.QuizAttemptAnswer
	repo.attempt.On("CreateWithAnswers", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 42
			savedAnswers = args.Get(2).([]*models.QuizAttemptAnswer)
		}).
		Return(nil)
	repo.quiz.On("RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted).Return(nil)

	resp, err := svc.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID:    1,
		TimeTaken: 120,
		Answers: []SubmittedAnswer{
			{QuestionID: 1, OptionID: 11},
			{QuestionID: 2, OptionID: 21},
			{QuestionID: 3, OptionID: 31},
		},
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, uint(42), resp.AttemptID)
	assert.Equal(t, float64(100), resp.Score)
	assert.Equal(t, 3, resp.CorrectAnswers)
	assert.Equal(t, 3, resp.TotalQuestions)
	assert.Equal(t, 0, resp.UnansweredQuestions)
	assert.Equal(t, models.QuizCompleted, resp.QuizStatus)

	require.Len(t, savedAnswers, 3)
	for _, answer := range savedAnswers {
		assert.True(t, answer.IsCorrect)
		require.NotNil(t, answer.OptionID)
	}

	repo.quiz.AssertCalled(t, "RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptSubmitted, published[0].Type)
}

func TestAttemptService_Submit_NoAnswers(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(threeQuestionQuiz(), nil)

	var savedAnswers []*models.QuizAttemptAnswer
	repo.attempt.On("CreateWithAnswers", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 43
			savedAnswers = args.Get(2).([]*models.QuizAttemptAnswer)
		}).
		Return(nil)
	repo.quiz.On("RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted).Return(nil)

	resp, err := svc.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1}, 7)

	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.Score)
	assert.Equal(t, 0, resp.CorrectAnswers)
	assert.Equal(t, 3, resp.UnansweredQuestions)

	// One row per question even when nothing was submitted.
	require.Len(t, savedAnswers, 3)
	for _, answer := range savedAnswers {
		assert.Nil(t, answer.OptionID)
		assert.False(t, answer.IsCorrect)
	}
}

func TestAttemptService_Submit_ForeignOptionGradesIncorrect(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	quiz := threeQuestionQuiz()
	quiz.Questions = quiz.Questions[:2]
	quiz.TotalQuestions = 2
	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)

	var savedAnswers []*models.QuizAttemptAnswer
	repo.attempt.On("CreateWithAnswers", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 44
			savedAnswers = args.Get(2).([]*models.QuizAttemptAnswer)
		}).
		Return(nil)
	repo.quiz.On("RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted).Return(nil)

	// Option 11 belongs to question 1; submitting it for question 2 is an
	// answer, just never a correct one.
	resp, err := svc.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID: 1,
		Answers: []SubmittedAnswer{
			{QuestionID: 1, OptionID: 11},
			{QuestionID: 2, OptionID: 11},
		},
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, float64(50), resp.Score)
	assert.Equal(t, 1, resp.CorrectAnswers)
	assert.Equal(t, 2, resp.TotalQuestions)
	assert.Equal(t, 0, resp.UnansweredQuestions)

	require.Len(t, savedAnswers, 2)
	assert.False(t, savedAnswers[1].IsCorrect)
	require.NotNil(t, savedAnswers[1].OptionID)
	assert.Equal(t, uint(11), *savedAnswers[1].OptionID)
}

func TestAttemptService_Submit_OmittedQuestion(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(threeQuestionQuiz(), nil)
	repo.attempt.On("CreateWithAnswers", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 45
		}).
		Return(nil)
	repo.quiz.On("RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted).Return(nil)

	resp, err := svc.Submit(context.Background(), &SubmitAttemptRequest{
		QuizID: 1,
		Answers: []SubmittedAnswer{
			{QuestionID: 1, OptionID: 11},
			{QuestionID: 2, OptionID: 21},
		},
	}, 7)

	require.NoError(t, err)
	assert.InDelta(t, 66.67, resp.Score, 0.01)
	assert.Equal(t, 2, resp.CorrectAnswers)
	assert.Equal(t, 1, resp.UnansweredQuestions)
}

func TestAttemptService_Submit_EmptyQuiz(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	quiz := &models.Quiz{ID: 1, Title: "Empty", Status: models.QuizPublished}
	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(quiz, nil)

	var savedAnswers []*models.QuizAttemptAnswer
	repo.attempt.On("CreateWithAnswers", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.QuizAttempt).ID = 46
			savedAnswers = args.Get(2).([]*models.QuizAttemptAnswer)
		}).
		Return(nil)
	repo.quiz.On("RefreshAggregates", mock.Anything, uint(1), models.QuizCompleted).Return(nil)

	// Zero questions must not divide by zero.
	resp, err := svc.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 1}, 7)

	require.NoError(t, err)
	assert.Equal(t, float64(0), resp.Score)
	assert.Equal(t, 0, resp.TotalQuestions)
	assert.Empty(t, savedAnswers)
}

func TestAttemptService_Submit_QuizNotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	repo.quiz.On("GetByIDWithQuestions", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Submit(context.Background(), &SubmitAttemptRequest{QuizID: 99}, 7)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestAttemptService_Submit_ValidationError(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	_, err := svc.Submit(context.Background(), &SubmitAttemptRequest{}, 7)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAttemptService_GetByIDWithDetails_StudentOwnership(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newAttemptServiceForTest(repo)

	attempt := &models.QuizAttempt{ID: 5, QuizID: 1, UserID: 7}
	repo.attempt.On("GetByIDWithDetails", mock.Anything, uint(5)).Return(attempt, nil)

	got, err := svc.GetByIDWithDetails(context.Background(), 5, 7, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, uint(5), got.ID)

	_, err = svc.GetByIDWithDetails(context.Background(), 5, 8, models.RoleStudent)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	// Mentors read any attempt.
	_, err = svc.GetByIDWithDetails(context.Background(), 5, 8, models.RoleMentor)
	assert.NoError(t, err)
}
