package repository

import (
	"context"

	"gorm.io/gorm"

	"hrportal/internal/model"
)

// RoleRepository defines persistence operations for roles and permissions.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	CreatePermission(ctx context.Context, perm *model.Permission) error
	FindPermission(ctx context.Context, name string, roleID uint) (*model.Permission, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository builds a GORM-backed repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).
		Preload("Permissions").
		Where("name = ?", name).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

// FindPermission looks up a permission by its role-scoped identity. Permission
// names are only unique per role, so both parts are required.
func (r *roleRepository) FindPermission(ctx context.Context, name string, roleID uint) (*model.Permission, error) {
	var perm model.Permission
	if err := r.db.WithContext(ctx).
		Where("name = ? AND role_id = ?", name, roleID).
		First(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}
