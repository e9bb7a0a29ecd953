package model

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named set of users within exactly one organization.
type Group struct {
	ID             uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	Description    string    `gorm:"column:description"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupMembership joins users to groups. A user may belong to any number of
// groups at once.
type GroupMembership struct {
	GroupID   uuid.UUID `gorm:"column:group_id;primaryKey;type:uuid"`
	UserID    uuid.UUID `gorm:"column:user_id;primaryKey;type:uuid"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GroupMembership) TableName() string {
	return "group_members"
}
