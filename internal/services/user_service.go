package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/BMS-2026/crm-service/internal/authz"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, bv *validator.BusinessValidator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: bv,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*models.User, error) {
	if !authz.CanManageUsers(actor.Role) {
		return nil, NewPermissionError(actor.ID, 0, "user", "create", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if existing, err := s.repo.User().GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: string(hash),
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.User, error) {
	// Anyone may look at their own profile; managing others is ADMIN-only.
	if id != actor.ID && !authz.CanManageUsers(actor.Role) {
		return nil, NewPermissionError(actor.ID, id, "user", "read", "insufficient role permissions")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*models.User, error) {
	if !authz.CanManageUsers(actor.Role) {
		return nil, NewPermissionError(actor.ID, id, "user", "update", "insufficient role permissions")
	}

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.repo.User().GetByEmail(ctx, *req.Email); err == nil && existing != nil {
			return nil, ErrDuplicateEmail
		} else if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	leavingSales := false
	if req.Role != nil {
		leavingSales = user.Role == models.RoleSales && *req.Role != models.RoleSales
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	// A role change away from SALES releases the user's book in the same
	// transaction; sales_id must never reference a non-SALES user.
	var released int64
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if leavingSales {
			n, err := tx.Customer().UnassignBySales(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to release book: %w", err)
			}
			released = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if leavingSales {
		s.logger.Info("User updated", "user_id", id, "actor_id", actor.ID, "released_customers", released)
	} else {
		s.logger.Info("User updated", "user_id", id, "actor_id", actor.ID)
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if !authz.CanManageUsers(actor.Role) {
		return NewPermissionError(actor.ID, id, "user", "delete", "insufficient role permissions")
	}

	if id == actor.ID {
		return validator.ValidationErrors{*NewValidationError("id", "cannot delete own account", id)}
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id, "actor_id", actor.ID)

	return nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error) {
	// Managers may list sales reps to drive the assignment picker;
	// everything else is ADMIN-only.
	if !authz.CanManageUsers(actor.Role) {
		salesOnly := filters.Role != nil && *filters.Role == models.RoleSales
		if actor.Role != models.RoleSalesManager || !salesOnly {
			return nil, NewPermissionError(actor.ID, 0, "user", "list", "insufficient role permissions")
		}
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{Users: users, Total: total}, nil
}
