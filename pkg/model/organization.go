package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant root. Users, groups, and connections hang off it.
type Organization struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}
