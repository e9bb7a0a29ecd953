package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablegate/tablegate/pkg/permission"
)

// The four grant kinds below are the whole permission store. Each is unique
// on its natural key; grants are upserted, never duplicated.

// UserConnectionGrant grants a user a level on a whole connection.
// A stored level of none is an explicit deny for that user.
type UserConnectionGrant struct {
	ID           uuid.UUID              `gorm:"column:id;primaryKey;type:uuid"`
	UserID       uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_conn"`
	ConnectionID uuid.UUID              `gorm:"column:connection_id;type:uuid;not null;uniqueIndex:idx_user_conn"`
	Permission   permission.AccessLevel `gorm:"column:permission;not null"`
	AllTables    bool                   `gorm:"column:all_tables;not null;default:false"`
	GrantedAt    time.Time              `gorm:"column:granted_at;autoCreateTime"`
}

func (UserConnectionGrant) TableName() string {
	return "user_connection_permissions"
}

// UserTableGrant grants a user a level on one named table of a connection.
type UserTableGrant struct {
	ID           uuid.UUID              `gorm:"column:id;primaryKey;type:uuid"`
	UserID       uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_table"`
	ConnectionID uuid.UUID              `gorm:"column:connection_id;type:uuid;not null;uniqueIndex:idx_user_table"`
	Table        string                 `gorm:"column:table_name;not null;uniqueIndex:idx_user_table"`
	Permission   permission.AccessLevel `gorm:"column:permission;not null"`
	GrantedAt    time.Time              `gorm:"column:granted_at;autoCreateTime"`
}

func (UserTableGrant) TableName() string {
	return "user_table_permissions"
}

// GroupConnectionGrant grants every member of a group a level on a connection.
type GroupConnectionGrant struct {
	ID           uuid.UUID              `gorm:"column:id;primaryKey;type:uuid"`
	GroupID      uuid.UUID              `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_conn"`
	ConnectionID uuid.UUID              `gorm:"column:connection_id;type:uuid;not null;uniqueIndex:idx_group_conn"`
	Permission   permission.AccessLevel `gorm:"column:permission;not null"`
	AllTables    bool                   `gorm:"column:all_tables;not null;default:false"`
	GrantedAt    time.Time              `gorm:"column:granted_at;autoCreateTime"`
}

func (GroupConnectionGrant) TableName() string {
	return "group_connection_permissions"
}

// GroupTableGrant grants every member of a group a level on one named table.
type GroupTableGrant struct {
	ID           uuid.UUID              `gorm:"column:id;primaryKey;type:uuid"`
	GroupID      uuid.UUID              `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_table"`
	ConnectionID uuid.UUID              `gorm:"column:connection_id;type:uuid;not null;uniqueIndex:idx_group_table"`
	Table        string                 `gorm:"column:table_name;not null;uniqueIndex:idx_group_table"`
	Permission   permission.AccessLevel `gorm:"column:permission;not null"`
	GrantedAt    time.Time              `gorm:"column:granted_at;autoCreateTime"`
}

func (GroupTableGrant) TableName() string {
	return "group_table_permissions"
}
