package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/authorizations"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/internal/identity"
	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
	"gorm.io/gorm"
)

type holderResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, input identity.Input, actor history.Actor) (*models.Holder, bool, error)
}

type permitIssuer interface {
	Issue(ctx context.Context, tx *gorm.DB, input authorizations.IssueInput, actor history.Actor) (*models.Authorization, error)
	GeneratePayload(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error)
}

type typeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuthorizationType, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input is the full registration form: the holder identity block plus the
// permit being requested.
type Input struct {
	Identity  identity.Input
	TypeID    uuid.UUID
	Plate     string
	Number    string
	ExpiresOn time.Time
}

// Result reports what the registration produced.
type Result struct {
	Holder        *models.Holder        `json:"holder"`
	HolderCreated bool                  `json:"holder_created"`
	Authorization *models.Authorization `json:"authorization"`
}

// Service runs the one-shot issuance flow: validate the identity block,
// resolve or create the holder, issue the permit, then generate its
// verification payload. Holder and permit writes share one transaction.
type Service interface {
	Register(ctx context.Context, input Input, actor history.Actor) (*Result, error)
}

type service struct {
	holders holderResolver
	permits permitIssuer
	types   typeFinder
	txs     txRunner
	logg    *logger.Logger
}

// NewService builds the registration service.
func NewService(holders holderResolver, permits permitIssuer, types typeFinder, txs txRunner, logg *logger.Logger) (Service, error) {
	if holders == nil || permits == nil || types == nil {
		return nil, fmt.Errorf("holder, permit, and type dependencies required")
	}
	if txs == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{holders: holders, permits: permits, types: types, txs: txs, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input Input, actor history.Actor) (*Result, error) {
	if validation := identity.Validate(input.Identity); !validation.Ok() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "registration validation failed").WithDetails(validation)
	}

	typ, err := s.types.FindByID(ctx, input.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown authorization type")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find authorization type")
	}
	if !typ.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "authorization type is no longer offered")
	}

	result := &Result{}
	err = s.txs.WithTx(ctx, func(tx *gorm.DB) error {
		holder, created, err := s.holders.Resolve(ctx, tx, input.Identity, actor)
		if err != nil {
			return err
		}
		result.Holder = holder
		result.HolderCreated = created

		auth, err := s.permits.Issue(ctx, tx, authorizations.IssueInput{
			HolderID:  holder.ID,
			TypeID:    input.TypeID,
			Plate:     input.Plate,
			Number:    input.Number,
			ExpiresOn: input.ExpiresOn,
		}, actor)
		if err != nil {
			return err
		}
		result.Authorization = auth
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register authorization")
	}

	// payload generation sits outside the transaction: the permit is already
	// committed and a payload failure must not unwind it
	withPayload, err := s.permits.GeneratePayload(ctx, result.Authorization.ID, actor)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithAuthorizationID(ctx, result.Authorization.ID.String()),
				"payload generation failed after issue", err)
		}
		return result, nil
	}
	result.Authorization = withPayload

	if s.logg != nil {
		ctx := s.logg.WithHolderID(ctx, result.Holder.ID.String())
		ctx = s.logg.WithAuthorizationID(ctx, result.Authorization.ID.String())
		s.logg.Info(ctx, "authorization registered")
	}
	return result, nil
}
