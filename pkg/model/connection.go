package model

import (
	"time"

	"github.com/google/uuid"
)

// Connection is a saved target database. Either OrganizationID or
// OwnerUserID must be set (enforced by a CHECK constraint); a connection
// with only an owner is personal scope. The password is stored AES-GCM
// encrypted and is opaque to everything but pkg/datasource.
type Connection struct {
	ID                uuid.UUID  `gorm:"column:id;primaryKey;type:uuid"`
	OrganizationID    *uuid.UUID `gorm:"column:organization_id;type:uuid"`
	OwnerUserID       *uuid.UUID `gorm:"column:owner_user_id;type:uuid"`
	Name              string     `gorm:"column:name;not null"`
	Host              string     `gorm:"column:host;not null"`
	Port              int        `gorm:"column:port;not null"`
	DatabaseName      string     `gorm:"column:database_name;not null"`
	Username          string     `gorm:"column:username;not null"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null"`
	CreatedBy         *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Connection) TableName() string {
	return "saved_connections"
}
