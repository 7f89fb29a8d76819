package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService  services.AttemptService
	feedbackService services.FeedbackService
}

func NewAttemptHandler(attemptService services.AttemptService, feedbackService services.FeedbackService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:     NewBaseHandler(logger),
		attemptService:  attemptService,
		feedbackService: feedbackService,
	}
}

// SubmitAttempt grades a submission and returns the result
// @Summary Submit attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param submission body services.SubmitAttemptRequest true "Submission"
// @Success 201 {object} SuccessResponse{data=services.SubmitAttemptResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting attempt", "quiz_id", req.QuizID)

	resp, err := h.attemptService.Submit(c.Request.Context(), &req, CallerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Attempt submitted",
		Data:    resp,
	})
}

// ListAttempts returns the mentor review queue
// @Summary List attempts
// @Tags attempts
// @Produce json
// @Param quiz_id query uint false "Quiz ID"
// @Param student_id query uint false "Student ID"
// @Param feedback query string false "pending or graded"
// @Param search query string false "Student name or quiz title substring"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.AttemptListResponse}
// @Router /attempts [get]
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	filters := repositories.AttemptFilters{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
	}
	if quizID := parseIntQuery(c, "quiz_id", 0); quizID > 0 {
		id := uint(quizID)
		filters.QuizID = &id
	}
	if studentID := parseIntQuery(c, "student_id", 0); studentID > 0 {
		id := uint(studentID)
		filters.StudentID = &id
	}
	switch c.Query("feedback") {
	case "pending":
		pending := false
		filters.HasFeedback = &pending
	case "graded":
		graded := true
		filters.HasFeedback = &graded
	}

	resp, err := h.attemptService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempts retrieved",
		Data:    resp,
	})
}

// GetAttempt returns one attempt with its answers and related records
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Attempt ID"
// @Success 200 {object} SuccessResponse{data=models.QuizAttempt}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := h.attemptService.GetByIDWithDetails(c.Request.Context(), id, CallerID(c), CallerRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempt retrieved",
		Data:    attempt,
	})
}

// GetMyAttempts returns the caller's own attempt history
// @Summary My attempts
// @Tags attempts
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.QuizAttempt}
// @Router /attempts/my [get]
func (h *AttemptHandler) GetMyAttempts(c *gin.Context) {
	attempts, err := h.attemptService.GetByStudent(c.Request.Context(), CallerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempts retrieved",
		Data:    attempts,
	})
}

// FeedbackBody is the request payload for recording feedback on an attempt.
type FeedbackBody struct {
	Feedback string `json:"feedback"`
}

// RecordFeedback writes mentor feedback onto an attempt and emails the student
// @Summary Record feedback
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Attempt ID"
// @Param feedback body FeedbackBody true "Feedback text"
// @Success 200 {object} SuccessResponse{data=models.QuizAttempt}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts/{id}/feedback [post]
func (h *AttemptHandler) RecordFeedback(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body FeedbackBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Recording feedback", "attempt_id", id)

	req := services.RecordFeedbackRequest{
		AttemptID: id,
		Feedback:  body.Feedback,
	}
	attempt, err := h.feedbackService.Record(c.Request.Context(), &req, CallerID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Feedback recorded",
		Data:    attempt,
	})
}
