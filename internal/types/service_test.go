package types

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTypesRepo struct {
	rows      []models.AuthorizationType
	createErr error
	activeSet map[uuid.UUID]bool
}

func (f *fakeTypesRepo) Create(ctx context.Context, row *models.AuthorizationType) (*models.AuthorizationType, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	row.ID = uuid.New()
	f.rows = append(f.rows, *row)
	return row, nil
}

func (f *fakeTypesRepo) List(ctx context.Context, activeOnly bool) ([]models.AuthorizationType, error) {
	return f.rows, nil
}

func (f *fakeTypesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AuthorizationType, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTypesRepo) FindByCode(ctx context.Context, code string) (*models.AuthorizationType, error) {
	for i := range f.rows {
		if f.rows[i].Code == code {
			return &f.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTypesRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := f.FindByID(ctx, id); err != nil {
		return err
	}
	if f.activeSet == nil {
		f.activeSet = map[uuid.UUID]bool{}
	}
	f.activeSet[id] = active
	return nil
}

func TestCreateTypeValidation(t *testing.T) {
	svc, err := NewService(&fakeTypesRepo{})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateType(ctx, CreateTypeInput{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateType(ctx, CreateTypeInput{Code: "AUT-009"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateTypeTrimsAndSetsOptionalFields(t *testing.T) {
	repo := &fakeTypesRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	created, err := svc.CreateType(context.Background(), CreateTypeInput{
		Code:        " AUT-009 ",
		Name:        " Transporte Especial ",
		Description: "Autorización especial",
		CreatedBy:   "inspector",
	})
	require.NoError(t, err)
	assert.Equal(t, "AUT-009", created.Code)
	assert.Equal(t, "Transporte Especial", created.Name)
	require.NotNil(t, created.Description)
	assert.True(t, created.IsActive)
}

func TestCreateTypeDuplicateCode(t *testing.T) {
	repo := &fakeTypesRepo{createErr: errors.New(`duplicate key value violates unique constraint "uniq_authorization_types_code"`)}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.CreateType(context.Background(), CreateTypeInput{Code: "AUT-001", Name: "A"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestDeactivateType(t *testing.T) {
	repo := &fakeTypesRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.CreateType(ctx, CreateTypeInput{Code: "AUT-001", Name: "A"})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateType(ctx, created.ID))
	assert.False(t, repo.activeSet[created.ID])

	err = svc.DeactivateType(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	err = svc.DeactivateType(ctx, uuid.Nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
