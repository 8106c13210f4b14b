package cascade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type holderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type authorizationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Authorization, error)
	ListByHolder(ctx context.Context, tx *gorm.DB, holderID uuid.UUID) ([]models.Authorization, error)
	CountByHolder(ctx context.Context, tx *gorm.DB, holderID uuid.UUID) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Coordinator owns the two delete flows that cross the holder/authorization
// boundary. Deleting a holder takes its permits with it; deleting a holder's
// last permit takes the holder with it. A per-operation tracker stops the two
// legs from re-entering each other, and each flow commits in one transaction.
type Coordinator struct {
	holders  holderStore
	auths    authorizationStore
	txs      txRunner
	recorder history.Recorder
	logg     *logger.Logger
}

// NewCoordinator builds the cascade delete coordinator.
func NewCoordinator(holders holderStore, auths authorizationStore, txs txRunner, recorder history.Recorder, logg *logger.Logger) (*Coordinator, error) {
	if holders == nil || auths == nil {
		return nil, fmt.Errorf("holder and authorization stores required")
	}
	if txs == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("history recorder required")
	}
	return &Coordinator{holders: holders, auths: auths, txs: txs, recorder: recorder, logg: logg}, nil
}

// DeleteHolder removes a holder and every permit issued to them. Each permit
// gets its own cascade audit entry before it goes away; the holder entry is
// written once the transaction commits.
func (c *Coordinator) DeleteHolder(ctx context.Context, id uuid.UUID, actor history.Actor) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "holder id is required")
	}

	holder, err := c.holders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "holder not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find holder")
	}

	tr := newTracker()
	tr.guard(kindHolder, id.String())
	defer tr.unguard(kindHolder, id.String())

	err = c.txs.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := c.auths.ListByHolder(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("list holder authorizations: %w", err)
		}

		var deleteErrs error
		for i := range rows {
			row := rows[i]
			if tr.guarded(kindAuthorization, row.ID.String()) {
				continue
			}
			deleteErrs = multierr.Append(deleteErrs, c.cascadePermitDelete(ctx, tx, tr, holder, row, actor))
		}
		if deleteErrs != nil {
			return deleteErrs
		}

		return c.holders.Delete(ctx, tx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete holder cascade")
	}

	c.recorder.Record(ctx, nil, actor, enums.HistoryActionDeleteHolder,
		fmt.Sprintf("Holder %s deleted", holder.FullName))
	if c.logg != nil {
		c.logg.Info(c.logg.WithHolderID(ctx, id.String()), "holder deleted with cascade")
	}
	return nil
}

func (c *Coordinator) cascadePermitDelete(ctx context.Context, tx *gorm.DB, tr *tracker, holder *models.Holder, row models.Authorization, actor history.Actor) error {
	tr.guard(kindAuthorization, row.ID.String())
	defer tr.unguard(kindAuthorization, row.ID.String())

	// the entry must exist before the row goes; the FK nulls out on commit
	c.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionDeleteAuthorizationCascade,
		fmt.Sprintf("Authorization removed with holder %s: plate %s, number %s", holder.FullName, row.Plate, row.Number))

	if err := c.auths.Delete(ctx, tx, row.ID); err != nil {
		return fmt.Errorf("delete authorization %s: %w", row.ID, err)
	}
	return nil
}

// DeleteAuthorization removes one permit. When that was the holder's last
// permit the holder goes too, with its own cascade audit entry.
func (c *Coordinator) DeleteAuthorization(ctx context.Context, id uuid.UUID, actor history.Actor) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "authorization id is required")
	}

	row, err := c.auths.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "authorization not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find authorization")
	}

	tr := newTracker()
	tr.guard(kindAuthorization, id.String())
	defer tr.unguard(kindAuthorization, id.String())

	c.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionDeleteAuthorization,
		fmt.Sprintf("Authorization deleted: plate %s, number %s", row.Plate, row.Number))

	holderRemoved := false
	err = c.txs.WithTx(ctx, func(tx *gorm.DB) error {
		if err := c.auths.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete authorization: %w", err)
		}

		remaining, err := c.auths.CountByHolder(ctx, tx, row.HolderID)
		if err != nil {
			return fmt.Errorf("count holder authorizations: %w", err)
		}
		if remaining > 0 || tr.guarded(kindHolder, row.HolderID.String()) {
			return nil
		}

		tr.guard(kindHolder, row.HolderID.String())
		defer tr.unguard(kindHolder, row.HolderID.String())

		if err := c.holders.Delete(ctx, tx, row.HolderID); err != nil {
			return fmt.Errorf("delete orphaned holder: %w", err)
		}
		holderRemoved = true
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete authorization cascade")
	}

	if holderRemoved {
		holderName := ""
		if row.Holder != nil {
			holderName = row.Holder.FullName
		}
		c.recorder.Record(ctx, nil, actor, enums.HistoryActionDeleteHolderCascade,
			fmt.Sprintf("Holder %s removed after their last authorization was deleted", holderName))
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithAuthorizationID(ctx, id.String()), "authorization deleted")
	}
	return nil
}
