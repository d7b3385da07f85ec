package seed

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"hrportal/internal/auth"
	"hrportal/internal/model"
)

// RoleSpec describes one seeded role.
type RoleSpec struct {
	Name        string
	Description string
}

// PermissionSpec describes one seeded permission within a role.
type PermissionSpec struct {
	Name        string
	Description string
}

// Roles is the static role catalog created at process start.
var Roles = []RoleSpec{
	{Name: "admin", Description: "Administrator with full access to all features"},
	{Name: "hr", Description: "HR staff with access to employee management and payroll"},
	{Name: "manager", Description: "Manager with access to attendance and limited employee data"},
	{Name: "employee", Description: "Regular employee with access to own data only"},
}

// Permissions lists each role's capabilities. Stored permission names are
// suffixed with the owning role (e.g. "employee:read_hr"), so the same
// capability can be granted independently per role while the (name, role)
// pair stays unique.
var Permissions = map[string][]PermissionSpec{
	"admin": {
		{Name: "user:create", Description: "Create users"},
		{Name: "user:read", Description: "Read user data"},
		{Name: "user:update", Description: "Update user data"},
		{Name: "user:delete", Description: "Delete users"},
		{Name: "employee:create", Description: "Create employees"},
		{Name: "employee:read", Description: "Read employee data"},
		{Name: "employee:update", Description: "Update employee data"},
		{Name: "employee:delete", Description: "Delete employees"},
		{Name: "attendance:create", Description: "Create attendance records"},
		{Name: "attendance:read", Description: "Read attendance records"},
		{Name: "attendance:update", Description: "Update attendance records"},
		{Name: "attendance:delete", Description: "Delete attendance records"},
		{Name: "payroll:create", Description: "Create payroll records"},
		{Name: "payroll:read", Description: "Read payroll records"},
		{Name: "payroll:update", Description: "Update payroll records"},
		{Name: "payroll:delete", Description: "Delete payroll records"},
	},
	"hr": {
		{Name: "employee:create", Description: "Create employees"},
		{Name: "employee:read", Description: "Read employee data"},
		{Name: "employee:update", Description: "Update employee data"},
		{Name: "attendance:read", Description: "Read attendance records"},
		{Name: "payroll:create", Description: "Create payroll records"},
		{Name: "payroll:read", Description: "Read payroll records"},
		{Name: "payroll:update", Description: "Update payroll records"},
	},
	"manager": {
		{Name: "employee:read", Description: "Read employee data"},
		{Name: "attendance:create", Description: "Create attendance records"},
		{Name: "attendance:read", Description: "Read attendance records"},
		{Name: "attendance:update", Description: "Update attendance records"},
		{Name: "payroll:read", Description: "Read payroll records"},
	},
	"employee": {
		{Name: "employee:read:self", Description: "Read own employee data"},
		{Name: "attendance:read:self", Description: "Read own attendance records"},
		{Name: "payroll:read:self", Description: "Read own payroll records"},
	},
}

// EnsureRoles creates any missing roles and their role-scoped permissions.
// It is idempotent and safe to run on every start.
func EnsureRoles(ctx context.Context, db *gorm.DB) error {
	for _, spec := range Roles {
		var role model.Role
		err := db.WithContext(ctx).Where("name = ?", spec.Name).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			role = model.Role{Name: spec.Name, Description: spec.Description}
			if err := db.WithContext(ctx).Create(&role).Error; err != nil {
				return fmt.Errorf("create role %s: %w", spec.Name, err)
			}
		} else if err != nil {
			return fmt.Errorf("find role %s: %w", spec.Name, err)
		}

		for _, permSpec := range Permissions[spec.Name] {
			name := permSpec.Name + "_" + spec.Name
			var perm model.Permission
			err := db.WithContext(ctx).
				Where("name = ? AND role_id = ?", name, role.ID).
				First(&perm).Error
			if err == gorm.ErrRecordNotFound {
				perm = model.Permission{
					Name:        name,
					Description: permSpec.Description,
					RoleID:      role.ID,
				}
				if err := db.WithContext(ctx).Create(&perm).Error; err != nil {
					return fmt.Errorf("create permission %s for role %s: %w", name, spec.Name, err)
				}
			} else if err != nil {
				return fmt.Errorf("find permission %s for role %s: %w", name, spec.Name, err)
			}
		}
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin user when it does not exist.
func EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	var user model.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("find admin user: %w", err)
	}

	var adminRole model.Role
	if err := db.WithContext(ctx).Where("name = ?", auth.SuperuserRole).First(&adminRole).Error; err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	user = model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Admin User",
		IsActive:     true,
		Roles:        []model.Role{adminRole},
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("bootstrap admin user %s created", email)
	return nil
}
