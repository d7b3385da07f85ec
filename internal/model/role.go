package model

// Role represents a named bucket of permissions assignable to users.
type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Description string `json:"description" gorm:"size:255"`

	// Relations
	Permissions []Permission `json:"permissions,omitempty" gorm:"foreignKey:RoleID"`
	Users       []User       `json:"-" gorm:"many2many:user_roles;"`
}

// Permission represents a capability scoped to exactly one role.
//
// (Name, RoleID) pairs are unique, but the same name may repeat across roles:
// each role owns its own copy of a capability, so a capability can be granted
// with different descriptions per role. The secondary index on Name exists
// purely for lookup by capability regardless of role.
type Permission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex:idx_permission_name_role;index:idx_permission_name"`
	Description string `json:"description" gorm:"size:255"`
	RoleID      uint   `json:"role_id" gorm:"not null;uniqueIndex:idx_permission_name_role"`
}
