package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	"github.com/munitransit/permits-backend/pkg/logger"
)

// Actor identifies who performed an audited action. ID may be nil when the
// staff account no longer exists; Name is always kept on the entry itself.
type Actor struct {
	ID   *uuid.UUID
	Name string
}

// Recorder appends audit entries. Implementations never surface write
// failures to the caller: a broken audit trail must not abort the primary
// mutation.
type Recorder interface {
	Record(ctx context.Context, authorizationID *uuid.UUID, actor Actor, action enums.HistoryAction, description string)
}

type entryWriter interface {
	Create(ctx context.Context, entry *models.HistoryEntry) error
}

type recorder struct {
	writer entryWriter
	logg   *logger.Logger
}

// NewRecorder builds the suppressing audit recorder.
func NewRecorder(writer entryWriter, logg *logger.Logger) Recorder {
	return &recorder{writer: writer, logg: logg}
}

func (r *recorder) Record(ctx context.Context, authorizationID *uuid.UUID, actor Actor, action enums.HistoryAction, description string) {
	entry := &models.HistoryEntry{
		AuthorizationID: authorizationID,
		ActorID:         actor.ID,
		ActorName:       actor.Name,
		Action:          action,
		Description:     description,
	}
	if err := r.writer.Create(ctx, entry); err != nil {
		if r.logg != nil {
			ctx = r.logg.WithField(ctx, "history_action", action.String())
			r.logg.Error(ctx, "history write failed, continuing", err)
		}
	}
}
