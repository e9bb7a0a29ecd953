package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/permission"
)

// User is an authenticated principal. The role is global, not per
// organization, and OrganizationID may be nil for personal-scope users.
type User struct {
	ID             uuid.UUID       `gorm:"column:id;primaryKey;type:uuid"`
	OrganizationID *uuid.UUID      `gorm:"column:organization_id;type:uuid"`
	Name           string          `gorm:"column:name;not null"`
	Email          string          `gorm:"column:email;not null;uniqueIndex"`
	Role           permission.Role `gorm:"column:role;not null;default:member"`
	PasswordHash   string          `gorm:"column:password_hash"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "app_users"
}

// IsSuperAdmin reports whether the user holds the global super_admin role.
func (u User) IsSuperAdmin() bool {
	return u.Role == permission.RoleSuperAdmin
}
