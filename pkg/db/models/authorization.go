package models

import (
	"time"

	"github.com/google/uuid"
)

// Authorization is a vehicle permit tied to a holder and a catalog type.
// (holder_id, plate, type_id) is unique alongside the global number index.
type Authorization struct {
	ID                   uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HolderID             uuid.UUID  `gorm:"column:holder_id;type:uuid;not null;uniqueIndex:uniq_authorizations_holder_plate_type"`
	TypeID               uuid.UUID  `gorm:"column:type_id;type:uuid;not null;uniqueIndex:uniq_authorizations_holder_plate_type"`
	Plate                string     `gorm:"column:plate;type:text;not null;uniqueIndex:uniq_authorizations_holder_plate_type"`
	Number               string     `gorm:"column:number;type:text;not null;uniqueIndex:uniq_authorizations_number"`
	ExpiresOn            time.Time  `gorm:"column:expires_on;type:date;not null"`
	Payload              *string    `gorm:"column:payload;type:text"`
	CodeGenerated        bool       `gorm:"column:code_generated;not null;default:false"`
	CodeDownloadedAt     *time.Time `gorm:"column:code_downloaded_at"`
	DocumentDownloadedAt *time.Time `gorm:"column:document_downloaded_at"`
	IsActive             bool       `gorm:"column:is_active;not null;default:true"`
	CreatedBy            *string    `gorm:"column:created_by;type:text"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Holder *Holder            `gorm:"foreignKey:HolderID"`
	Type   *AuthorizationType `gorm:"foreignKey:TypeID"`
}
