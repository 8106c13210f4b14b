package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/pkg/enums"
)

// HistoryEntry is an append-only audit row. AuthorizationID is a weak
// reference (ON DELETE SET NULL) so audit trails outlive the rows they
// describe.
type HistoryEntry struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorizationID *uuid.UUID          `gorm:"column:authorization_id;type:uuid;index"`
	ActorID         *uuid.UUID          `gorm:"column:actor_id;type:uuid"`
	ActorName       string              `gorm:"column:actor_name;type:text;not null"`
	Action          enums.HistoryAction `gorm:"column:action;type:history_action;not null;index"`
	Description     string              `gorm:"column:description;type:text;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}
