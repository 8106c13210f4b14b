package types

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db"
	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"gorm.io/gorm"
)

type typesRepository interface {
	Create(ctx context.Context, row *models.AuthorizationType) (*models.AuthorizationType, error)
	List(ctx context.Context, activeOnly bool) ([]models.AuthorizationType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuthorizationType, error)
	FindByCode(ctx context.Context, code string) (*models.AuthorizationType, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// CreateTypeInput holds the fields for a new catalog entry.
type CreateTypeInput struct {
	Code        string
	Name        string
	Description string
	CreatedBy   string
}

// Service exposes the authorization type catalog. Types are never deleted,
// only deactivated, because issued permits keep referencing them.
type Service interface {
	ListTypes(ctx context.Context, activeOnly bool) ([]models.AuthorizationType, error)
	CreateType(ctx context.Context, input CreateTypeInput) (*models.AuthorizationType, error)
	DeactivateType(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo typesRepository
}

// NewService builds the catalog service.
func NewService(repo typesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("types repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListTypes(ctx context.Context, activeOnly bool) ([]models.AuthorizationType, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list authorization types")
	}
	return rows, nil
}

func (s *service) CreateType(ctx context.Context, input CreateTypeInput) (*models.AuthorizationType, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	row := &models.AuthorizationType{
		Code:     code,
		Name:     name,
		IsActive: true,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		row.Description = &desc
	}
	if by := strings.TrimSpace(input.CreatedBy); by != "" {
		row.CreatedBy = &by
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "type code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create authorization type")
	}
	return created, nil
}

func (s *service) DeactivateType(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "type id is required")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "authorization type not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate authorization type")
	}
	return nil
}
