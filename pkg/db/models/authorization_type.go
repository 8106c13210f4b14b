package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthorizationType is a catalog row describing a kind of municipal permit.
type AuthorizationType struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description *string   `gorm:"column:description;type:text"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedBy   *string   `gorm:"column:created_by;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
