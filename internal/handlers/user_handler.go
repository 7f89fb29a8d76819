package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/services"
	"github.com/quizdesk/quiz-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ListUsers returns accounts for the admin console
// @Summary List users
// @Tags users
// @Produce json
// @Param role_id query uint false "Role ID"
// @Param search query string false "Name or email substring"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.UserListResponse}
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		Search: c.Query("search"),
		Page:   parseIntQuery(c, "page", 1),
		Limit:  parseIntQuery(c, "limit", 20),
	}
	if roleID := parseIntQuery(c, "role_id", 0); roleID > 0 {
		id := uint(roleID)
		filters.RoleID = &id
	}

	resp, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Users retrieved",
		Data:    resp,
	})
}

// GetUser returns one account
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path uint true "User ID"
// @Success 200 {object} SuccessResponse{data=models.User}
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User retrieved",
		Data:    user,
	})
}

// SetActiveBody toggles whether an account may log in.
type SetActiveBody struct {
	Active bool `json:"active"`
}

// SetUserActive enables or disables an account
// @Summary Set user active
// @Tags users
// @Accept json
// @Produce json
// @Param id path uint true "User ID"
// @Param body body SetActiveBody true "Active flag"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/active [put]
func (h *UserHandler) SetUserActive(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body SetActiveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Changing user active flag", "target_user_id", id, "active", body.Active)

	if err := h.userService.SetActive(c.Request.Context(), id, body.Active); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User updated",
	})
}

// ListRoles returns all roles with their enabled flags
// @Summary List roles
// @Tags roles
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Role}
// @Router /roles [get]
func (h *UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.userService.ListRoles(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Roles retrieved",
		Data:    roles,
	})
}

// SetEnabledBody toggles whether a role accepts logins and registrations.
type SetEnabledBody struct {
	Enabled bool `json:"enabled"`
}

// SetRoleEnabled enables or disables a role
// @Summary Set role enabled
// @Tags roles
// @Accept json
// @Produce json
// @Param id path uint true "Role ID"
// @Param body body SetEnabledBody true "Enabled flag"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id}/enabled [put]
func (h *UserHandler) SetRoleEnabled(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body SetEnabledBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Changing role enabled flag", "role_id", id, "enabled", body.Enabled)

	if err := h.userService.SetRoleEnabled(c.Request.Context(), id, body.Enabled); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Role updated",
	})
}
