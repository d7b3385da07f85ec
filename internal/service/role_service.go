package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	errs "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// RoleService handles the role and permission catalog.
type RoleService interface {
	CreateRole(ctx context.Context, name, description string) (*model.Role, error)
	GetRole(ctx context.Context, id uint) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	CreatePermission(ctx context.Context, roleID uint, name, description string) (*model.Permission, error)
}

type roleService struct {
	roleRepo repository.RoleRepository
}

// NewRoleService creates a new role service.
func NewRoleService(roleRepo repository.RoleRepository) RoleService {
	return &roleService{roleRepo: roleRepo}
}

func (s *roleService) CreateRole(ctx context.Context, name, description string) (*model.Role, error) {
	existing, err := s.roleRepo.FindByName(ctx, name)
	if err == nil && existing != nil {
		return nil, errs.ErrRoleAlreadyExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check role existence: %w", err)
	}

	role := &model.Role{Name: name, Description: description}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.List(ctx)
}

// CreatePermission defines a permission owned by one role. The same name may
// exist under other roles; only the (name, role) pair must be unique.
func (s *roleService) CreatePermission(ctx context.Context, roleID uint, name, description string) (*model.Permission, error) {
	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return nil, errs.ErrRoleNotFound
	}

	existing, err := s.roleRepo.FindPermission(ctx, name, roleID)
	if err == nil && existing != nil {
		return nil, errs.ErrPermissionAlreadyExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check permission existence: %w", err)
	}

	perm := &model.Permission{Name: name, Description: description, RoleID: roleID}
	if err := s.roleRepo.CreatePermission(ctx, perm); err != nil {
		return nil, fmt.Errorf("create permission: %w", err)
	}
	return perm, nil
}
