package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

// ExportService produces downloadable result sheets for mentors and admins.
type ExportService interface {
	// ExportQuizResults renders every attempt of the quiz into an Excel
	// workbook, one row per attempt.
	ExportQuizResults(ctx context.Context, quizID uint, userID uint, role models.RoleName) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint, userID uint, role models.RoleName) ([]byte, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}

	if role != models.RoleAdmin && role != models.RoleMentor && quiz.CreatedBy != userID {
		return nil, NewPermissionError(userID, quizID, "quiz", "export_results", "not a mentor, admin or quiz creator")
	}

	attempts, _, err := s.repo.Attempt().List(ctx, repositories.AttemptFilters{
		QuizID: &quizID,
		Limit:  10000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Attempt ID", "Student", "Email", "Score", "Time Taken (s)",
		"Completed At", "Feedback Status", "Reviewed By",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		feedbackStatus := "pending"
		reviewedBy := ""
		if attempt.MentorFeedback != nil {
			feedbackStatus = "graded"
			if attempt.Mentor != nil {
				reviewedBy = attempt.Mentor.Name
			}
		}

		row := []interface{}{
			attempt.ID,
			attempt.User.Name,
			attempt.User.Email,
			attempt.Score,
			attempt.TimeTaken,
			attempt.CompletedAt.Format("2006-01-02 15:04:05"),
			feedbackStatus,
			reviewedBy,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported",
		"quiz_id", quizID,
		"attempts", len(attempts),
		"user_id", userID)

	return buf.Bytes(), nil
}
