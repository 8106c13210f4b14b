package models

import (
	"time"

	"github.com/google/uuid"
)

// Holder is the person or company a permit is issued to. Identifier columns
// are nullable pointers so absent values land as NULL and never trip the
// unique indexes.
type Holder struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName   string    `gorm:"column:full_name;type:text;not null"`
	NationalID *string   `gorm:"column:national_id;type:text;uniqueIndex"`
	TaxID      *string   `gorm:"column:tax_id;type:text;uniqueIndex"`
	Email      *string   `gorm:"column:email;type:text;uniqueIndex"`
	Phone      *string   `gorm:"column:phone;type:text;uniqueIndex"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedBy  *string   `gorm:"column:created_by;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Authorizations []Authorization `gorm:"foreignKey:HolderID"`
}
