package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quizdesk/quiz-service/internal/models"
	"github.com/quizdesk/quiz-service/internal/repositories"
)

// UserService covers the admin views over accounts and roles.
type UserService interface {
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	SetActive(ctx context.Context, id uint, active bool) error
	ListRoles(ctx context.Context) ([]*models.Role, error)
	SetRoleEnabled(ctx context.Context, roleID uint, enabled bool) error
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Page,
		Limit: filters.Limit,
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, id uint, active bool) error {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	user.IsActive = active
	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User active flag changed", "user_id", id, "active", active)
	return nil
}

func (s *userService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.repo.User().ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *userService) SetRoleEnabled(ctx context.Context, roleID uint, enabled bool) error {
	if err := s.repo.User().SetRoleEnabled(ctx, roleID, enabled); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	s.logger.Info("Role enabled flag changed", "role_id", roleID, "enabled", enabled)
	return nil
}
