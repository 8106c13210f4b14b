package authorizations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/internal/history"
	"github.com/munitransit/permits-backend/pkg/db"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	pkgpagination "github.com/munitransit/permits-backend/pkg/pagination"
	"gorm.io/gorm"
)

type authorizationsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, row *models.Authorization) (*models.Authorization, error)
	Update(ctx context.Context, tx *gorm.DB, row *models.Authorization) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Authorization, error)
	ExistsByNumber(ctx context.Context, tx *gorm.DB, number string) (bool, error)
	ExistsByHolderPlateType(ctx context.Context, tx *gorm.DB, holderID, typeID uuid.UUID, plate string) (bool, error)
	List(ctx context.Context, opts listQuery) ([]models.Authorization, error)
}

// IssueInput holds the fields for a new permit.
type IssueInput struct {
	HolderID  uuid.UUID
	TypeID    uuid.UUID
	Plate     string
	Number    string
	ExpiresOn time.Time
}

// UpdateInput restricts admin edits to the expiry date and the active flag.
type UpdateInput struct {
	ExpiresOn *time.Time
	IsActive  *bool
}

// ListParams carries permit listing filters from the controller.
type ListParams struct {
	SearchField string
	Search      string
	TypeID      *uuid.UUID
	State       string
	From        string
	To          string
	Limit       int
	Cursor      string
}

// ListResult is one page of permits.
type ListResult struct {
	Items  []models.Authorization
	Cursor string
}

// Service exposes the permit lifecycle. Issue runs inside the caller's
// transaction so holder resolution and permit creation commit together.
// Deleting a permit is owned by the cascade coordinator.
type Service interface {
	Issue(ctx context.Context, tx *gorm.DB, input IssueInput, actor history.Actor) (*models.Authorization, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Authorization, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor history.Actor) (*models.Authorization, error)
	GeneratePayload(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error)
	DownloadCode(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error)
	DownloadDocument(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error)
}

type service struct {
	repo     authorizationsRepository
	recorder history.Recorder
	baseURL  string
	now      func() time.Time
}

// NewService builds the permit lifecycle service. baseURL is the public
// verification page the generated payloads point at.
func NewService(repo authorizationsRepository, recorder history.Recorder, baseURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("authorizations repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("history recorder required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("verification base url required")
	}
	return &service{repo: repo, recorder: recorder, baseURL: baseURL, now: time.Now}, nil
}

const dateLayout = "2006-01-02"

func (s *service) Issue(ctx context.Context, tx *gorm.DB, input IssueInput, actor history.Actor) (*models.Authorization, error) {
	plate := strings.ToUpper(strings.TrimSpace(input.Plate))
	number := strings.TrimSpace(input.Number)

	switch {
	case input.HolderID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holder id is required")
	case input.TypeID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type id is required")
	case plate == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate is required")
	case number == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorization number is required")
	case input.ExpiresOn.IsZero():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry date is required")
	}
	if dateOnly(input.ExpiresOn).Before(dateOnly(s.now())) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry date cannot be in the past")
	}

	// pre-checks give clean messages; the unique indexes still backstop races
	if taken, err := s.repo.ExistsByNumber(ctx, tx, number); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check authorization number")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "authorization number already in use")
	}
	if taken, err := s.repo.ExistsByHolderPlateType(ctx, tx, input.HolderID, input.TypeID, plate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check holder plate type")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "holder already has this authorization type for the plate")
	}

	row := &models.Authorization{
		HolderID:  input.HolderID,
		TypeID:    input.TypeID,
		Plate:     plate,
		Number:    number,
		ExpiresOn: dateOnly(input.ExpiresOn),
		IsActive:  true,
	}
	if actor.Name != "" {
		by := actor.Name
		row.CreatedBy = &by
	}

	created, err := s.repo.Create(ctx, tx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "authorization already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create authorization")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Authorization, error) {
	return s.find(ctx, id)
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Authorization, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorization id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "authorization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get authorization")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		search: params.Search,
		typeID: params.TypeID,
		today:  s.now(),
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}

	if params.Search != "" {
		field := SearchField(params.SearchField)
		if params.SearchField == "" {
			field = SearchPlate
		}
		if !ValidSearchField(field) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid search field")
		}
		query.searchField = field
	}
	if params.State != "" {
		state, err := enums.ParseAuthorizationState(params.State)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter")
		}
		query.state = &state
	}
	if params.From != "" {
		from, err := time.Parse(dateLayout, params.From)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from date")
		}
		query.from = &from
	}
	if params.To != "" {
		parsed, err := time.Parse(dateLayout, params.To)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to date")
		}
		// inclusive end date: filter strictly before the next day
		to := parsed.AddDate(0, 0, 1)
		query.to = &to
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list authorizations")
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

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput, actor history.Actor) (*models.Authorization, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if input.ExpiresOn != nil && !dateOnly(*input.ExpiresOn).Equal(dateOnly(row.ExpiresOn)) {
		row.ExpiresOn = dateOnly(*input.ExpiresOn)
		changes = append(changes, fmt.Sprintf("Expiry changed to %s", row.ExpiresOn.Format(dateLayout)))
	}
	if input.IsActive != nil && *input.IsActive != row.IsActive {
		row.IsActive = *input.IsActive
		state := "Inactive"
		if row.IsActive {
			state = "Active"
		}
		changes = append(changes, fmt.Sprintf("State changed to %s", state))
	}
	if len(changes) == 0 {
		return row, nil
	}

	if err := s.repo.Update(ctx, nil, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update authorization")
	}

	s.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionUpdateAuthorization, strings.Join(changes, "; "))
	return row, nil
}

func (s *service) GeneratePayload(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := BuildPayload(s.baseURL, row)
	row.Payload = &payload
	row.CodeGenerated = true
	if err := s.repo.Update(ctx, nil, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store authorization payload")
	}

	s.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionGenerateCode,
		fmt.Sprintf("Verification code generated for plate %s", row.Plate))
	return row, nil
}

func (s *service) DownloadCode(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsExpired(row.ExpiresOn, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "authorization is expired")
	}

	now := s.now()
	row.CodeDownloadedAt = &now
	if err := s.repo.Update(ctx, nil, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp code download")
	}

	s.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionDownloadCode,
		fmt.Sprintf("Verification code downloaded for plate %s", row.Plate))
	return row, nil
}

func (s *service) DownloadDocument(ctx context.Context, id uuid.UUID, actor history.Actor) (*models.Authorization, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsExpired(row.ExpiresOn, s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "authorization is expired")
	}

	now := s.now()
	row.DocumentDownloadedAt = &now
	if err := s.repo.Update(ctx, nil, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp document download")
	}

	s.recorder.Record(ctx, &row.ID, actor, enums.HistoryActionDownloadDocument,
		fmt.Sprintf("Document downloaded for plate %s", row.Plate))
	return row, nil
}
