package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hrportal/internal/auth"
	errs "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// UserUpdateInput carries optional user profile changes. Nil fields are left
// untouched.
type UserUpdateInput struct {
	FullName *string
	Email    *string
	IsActive *bool
	Password *string
}

// UserService handles user administration.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, id uint, input UserUpdateInput) (*model.User, error)
	AssignRole(ctx context.Context, userID uint, roleName string) (alreadyHeld bool, err error)
	RemoveRole(ctx context.Context, userID uint, roleName string) (wasHeld bool, err error)
	HasPermission(ctx context.Context, user *model.User, permission string) bool
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, input UserUpdateInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(ctx, *input.Email)
		if err == nil && existing != nil {
			return nil, errs.ErrUserAlreadyExists
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("check email availability: %w", err)
		}
		user.Email = *input.Email
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// AssignRole attaches a role to a user. Assigning an already-held role is a
// no-op reported through alreadyHeld.
func (s *userService) AssignRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return false, errs.ErrRoleNotFound
	}

	if auth.HasAnyRole(user, []string{roleName}) {
		return true, nil
	}
	if err := s.userRepo.AddRole(ctx, user, role); err != nil {
		return false, fmt.Errorf("assign role: %w", err)
	}
	return false, nil
}

// RemoveRole detaches a role from a user. Removing a role the user does not
// hold is a no-op reported through wasHeld.
func (s *userService) RemoveRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		return false, errs.ErrRoleNotFound
	}

	if !auth.HasAnyRole(user, []string{roleName}) {
		return false, nil
	}
	if err := s.userRepo.RemoveRole(ctx, user, role); err != nil {
		return false, fmt.Errorf("remove role: %w", err)
	}
	return true, nil
}

func (s *userService) HasPermission(_ context.Context, user *model.User, permission string) bool {
	return auth.HasAnyPermission(user, []string{permission})
}
