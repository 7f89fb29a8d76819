package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizdesk/quiz-service/internal/auth"
	"github.com/quizdesk/quiz-service/internal/events"
	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
	"github.com/quizdesk/quiz-service/internal/utils"
)

// AuthService handles registration, login and identity lookups.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,role_name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type authService struct {
	repo          repositories.Repository
	tokens        *auth.TokenManager
	publisher     events.EventPublisher
	notifications NotificationService
	logger        *slog.Logger
	validator     *utils.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenManager, publisher events.EventPublisher, notifications NotificationService, logger *slog.Logger, validator *utils.Validator) AuthService {
	return &authService{
		repo:          repo,
		tokens:        tokens,
		publisher:     publisher,
		notifications: notifications,
		logger:        logger,
		validator:     validator,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	taken, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	role, err := s.repo.User().GetRoleByName(ctx, models.RoleName(req.Role))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	if !role.Enabled {
		return nil, ErrRoleDisabled
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Role = *role

	token, err := s.tokens.Issue(user.ID, role.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	// Downstream consumers pick up the welcome flow from this event; a
	// publish failure does not fail the registration.
	event := events.NewUserRegisteredEvent(user.ID, user.Email, user.Name, string(role.Name))
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish user registered event",
			"user_id", user.ID,
			"error", err)
	}

	// Best effort, the registration already succeeded.
	if err := s.notifications.SendWelcome(ctx, user); err != nil {
		s.logger.Error("Failed to send welcome email",
			"user_id", user.ID,
			"error", err)
	}

	s.logger.Info("User registered",
		"user_id", user.ID,
		"role", role.Name)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a bad password so callers cannot probe for
			// registered addresses.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || !user.Role.Enabled {
		return nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.ID, user.Role.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.User().Update(ctx, user); err != nil {
		s.logger.Error("Failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role.Name)

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
