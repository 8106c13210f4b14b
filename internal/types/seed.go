package types

import (
	"context"
	"errors"

	"github.com/munitransit/permits-backend/pkg/db/models"
	"gorm.io/gorm"
)

// DefaultCatalog is the municipal permit catalog seeded on fresh installs.
var DefaultCatalog = []SeedType{
	{Code: "AUT-001", Name: "Estacionamiento Liviano", Description: "Autorización de Estacionamiento Liviano"},
	{Code: "AUT-002", Name: "Estacionamiento Pesado", Description: "Autorización de Estacionamiento Pesado"},
	{Code: "AUT-003", Name: "Carga y Descarga Liviana", Description: "Autorización de Carga y Descarga Liviana"},
	{Code: "AUT-004", Name: "Carga y Descarga Pesada", Description: "Autorización de Carga y Descarga Pesada"},
	{Code: "AUT-005", Name: "Circulación Pesada", Description: "Autorización de Circulación Pesada"},
	{Code: "AUT-006", Name: "Circulación Liviana", Description: "Autorización de Circulación Liviana"},
	{Code: "AUT-007", Name: "Circulación Escolar Pesado", Description: "Autorización de Circulación Escolar Pesado"},
	{Code: "AUT-008", Name: "Circulación Escolar Liviano", Description: "Autorización de Circulación Escolar Liviano"},
}

// SeedType is one catalog row to ensure during seeding.
type SeedType struct {
	Code        string
	Name        string
	Description string
}

// SeedResult reports what EnsureCatalog changed.
type SeedResult struct {
	Created  []string
	Existing []string
}

type seedRepository interface {
	Create(ctx context.Context, row *models.AuthorizationType) (*models.AuthorizationType, error)
	FindByCode(ctx context.Context, code string) (*models.AuthorizationType, error)
}

// EnsureCatalog inserts any of the given types missing by code. Existing rows
// are left untouched.
func EnsureCatalog(ctx context.Context, repo seedRepository, seeds []SeedType) (*SeedResult, error) {
	result := &SeedResult{}
	for _, seed := range seeds {
		if _, err := repo.FindByCode(ctx, seed.Code); err == nil {
			result.Existing = append(result.Existing, seed.Code)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		row := &models.AuthorizationType{
			Code:     seed.Code,
			Name:     seed.Name,
			IsActive: true,
		}
		if seed.Description != "" {
			desc := seed.Description
			row.Description = &desc
		}
		if _, err := repo.Create(ctx, row); err != nil {
			return nil, err
		}
		result.Created = append(result.Created, seed.Code)
	}
	return result, nil
}
