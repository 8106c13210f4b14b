package holders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/internal/identity"
	"github.com/munitransit/permits-backend/pkg/db"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	pkgpagination "github.com/munitransit/permits-backend/pkg/pagination"
	"gorm.io/gorm"
)

type holdersRepository interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.Holder) (*models.Holder, error)
	Update(ctx context.Context, tx *gorm.DB, row *models.Holder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	GetWithAuthorizations(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	FindByNationalID(ctx context.Context, tx *gorm.DB, nationalID string) (*models.Holder, error)
	FindByTaxID(ctx context.Context, tx *gorm.DB, taxID string) (*models.Holder, error)
	List(ctx context.Context, opts listQuery) ([]models.Holder, error)
}

// ListParams carries holder listing filters from the controller.
type ListParams struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Cursor     string
}

// ListResult is one page of holders.
type ListResult struct {
	Items  []models.Holder
	Cursor string
}

// UpdateInput holds the editable holder fields. IsActive is optional so a
// plain identity edit leaves the flag alone.
type UpdateInput struct {
	Identity identity.Input
	IsActive *bool
}

// Service exposes the holder registry. Deleting a holder is owned by the
// cascade coordinator, not this service, because it tears down permits too.
type Service interface {
	Resolve(ctx context.Context, tx *gorm.DB, input identity.Input, actor history.Actor) (*models.Holder, bool, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor history.Actor) (*models.Holder, error)
}

type service struct {
	repo     holdersRepository
	recorder history.Recorder
}

// NewService builds the holder registry service.
func NewService(repo holdersRepository, recorder history.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("holders repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("history recorder required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

// Resolve finds the holder the identity block refers to, or creates one.
// Lookup tries the national id first, then the tax id. On a match, non-empty
// input fields are merged onto the stored row; stored values are never
// blanked, and a missing national id is backfilled when the match came
// through the tax id.
func (s *service) Resolve(ctx context.Context, tx *gorm.DB, input identity.Input, actor history.Actor) (*models.Holder, bool, error) {
	input = identity.Clean(input)
	if input.NationalID == "" && input.TaxID == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "at least one of national id or tax id is required")
	}

	found, err := s.lookup(ctx, tx, input)
	if err != nil {
		return nil, false, err
	}

	if found != nil {
		if merge(found, input) {
			if err := s.repo.Update(ctx, tx, found); err != nil {
				if db.IsUniqueViolation(err, "") {
					return nil, false, pkgerrors.New(pkgerrors.CodeConflict, "holder identifier already in use")
				}
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update holder")
			}
		}
		return found, false, nil
	}

	row := &models.Holder{
		FullName: input.FullName,
		IsActive: true,
	}
	setIfPresent(&row.NationalID, input.NationalID)
	setIfPresent(&row.TaxID, input.TaxID)
	setIfPresent(&row.Email, input.Email)
	setIfPresent(&row.Phone, input.Phone)
	setIfPresent(&row.CreatedBy, actor.Name)

	created, err := s.repo.Create(ctx, tx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, false, pkgerrors.New(pkgerrors.CodeConflict, "holder identifier already in use")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create holder")
	}
	return created, true, nil
}

func (s *service) lookup(ctx context.Context, tx *gorm.DB, input identity.Input) (*models.Holder, error) {
	if input.NationalID != "" {
		row, err := s.repo.FindByNationalID(ctx, tx, input.NationalID)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find holder by national id")
		}
	}
	if input.TaxID != "" {
		row, err := s.repo.FindByTaxID(ctx, tx, input.TaxID)
		if err == nil {
			return row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find holder by tax id")
		}
	}
	return nil, nil
}

// merge overlays non-empty input fields onto the stored row and reports
// whether anything changed.
func merge(row *models.Holder, input identity.Input) bool {
	dirty := false
	if input.FullName != "" && input.FullName != row.FullName {
		row.FullName = input.FullName
		dirty = true
	}
	dirty = mergeField(&row.NationalID, input.NationalID) || dirty
	dirty = mergeField(&row.TaxID, input.TaxID) || dirty
	dirty = mergeField(&row.Email, input.Email) || dirty
	dirty = mergeField(&row.Phone, input.Phone) || dirty
	return dirty
}

func mergeField(dst **string, value string) bool {
	if value == "" {
		return false
	}
	if *dst != nil && **dst == value {
		return false
	}
	*dst = &value
	return true
}

func setIfPresent(dst **string, value string) {
	if value != "" {
		*dst = &value
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		search:     params.Search,
		activeOnly: params.ActiveOnly,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}

	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holders")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holder id is required")
	}
	row, err := s.repo.GetWithAuthorizations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "holder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get holder")
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor history.Actor) (*models.Holder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holder id is required")
	}

	if result := identity.Validate(input.Identity); !result.Ok() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holder validation failed").WithDetails(result)
	}
	cleaned := identity.Clean(input.Identity)

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "holder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find holder")
	}

	row.FullName = cleaned.FullName
	row.NationalID = optional(cleaned.NationalID)
	row.TaxID = optional(cleaned.TaxID)
	row.Email = optional(cleaned.Email)
	row.Phone = optional(cleaned.Phone)
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, nil, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "holder identifier already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update holder")
	}

	// holder-level entries carry no authorization reference
	s.recorder.Record(ctx, nil, actor, enums.HistoryActionUpdateHolder, fmt.Sprintf("Holder %s updated", row.FullName))
	return row, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
