package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/internal/authorizations"
	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

type typeView struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func typeViewFromModel(m *models.AuthorizationType) typeView {
	return typeView{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type holderView struct {
	ID             uuid.UUID           `json:"id"`
	FullName       string              `json:"full_name"`
	NationalID     *string             `json:"national_id,omitempty"`
	TaxID          *string             `json:"tax_id,omitempty"`
	Email          *string             `json:"email,omitempty"`
	Phone          *string             `json:"phone,omitempty"`
	IsActive       bool                `json:"is_active"`
	CreatedBy      *string             `json:"created_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Authorizations []authorizationView `json:"authorizations,omitempty"`
}

func holderViewFromModel(m *models.Holder, now time.Time) holderView {
	view := holderView{
		ID:         m.ID,
		FullName:   m.FullName,
		NationalID: m.NationalID,
		TaxID:      m.TaxID,
		Email:      m.Email,
		Phone:      m.Phone,
		IsActive:   m.IsActive,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	for i := range m.Authorizations {
		view.Authorizations = append(view.Authorizations, authorizationViewFromModel(&m.Authorizations[i], now))
	}
	return view
}

type holderSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	NationalID *string   `json:"national_id,omitempty"`
	TaxID      *string   `json:"tax_id,omitempty"`
}

type authorizationView struct {
	ID                   uuid.UUID                `json:"id"`
	HolderID             uuid.UUID                `json:"holder_id"`
	TypeID               uuid.UUID                `json:"type_id"`
	Plate                string                   `json:"plate"`
	Number               string                   `json:"number"`
	ExpiresOn            string                   `json:"expires_on"`
	State                enums.AuthorizationState `json:"state"`
	DaysRemaining        int                      `json:"days_remaining"`
	Payload              *string                  `json:"payload,omitempty"`
	CodeGenerated        bool                     `json:"code_generated"`
	CodeDownloadedAt     *time.Time               `json:"code_downloaded_at,omitempty"`
	DocumentDownloadedAt *time.Time               `json:"document_downloaded_at,omitempty"`
	IsActive             bool                     `json:"is_active"`
	CreatedBy            *string                  `json:"created_by,omitempty"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
	Holder               *holderSummary           `json:"holder,omitempty"`
	Type                 *typeView                `json:"type,omitempty"`
}

func authorizationViewFromModel(m *models.Authorization, now time.Time) authorizationView {
	view := authorizationView{
		ID:                   m.ID,
		HolderID:             m.HolderID,
		TypeID:               m.TypeID,
		Plate:                m.Plate,
		Number:               m.Number,
		ExpiresOn:            m.ExpiresOn.Format(dateLayout),
		State:                authorizations.StateOf(m, now),
		DaysRemaining:        authorizations.DaysRemaining(m.ExpiresOn, now),
		Payload:              m.Payload,
		CodeGenerated:        m.CodeGenerated,
		CodeDownloadedAt:     m.CodeDownloadedAt,
		DocumentDownloadedAt: m.DocumentDownloadedAt,
		IsActive:             m.IsActive,
		CreatedBy:            m.CreatedBy,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.Holder != nil {
		view.Holder = &holderSummary{
			ID:         m.Holder.ID,
			FullName:   m.Holder.FullName,
			NationalID: m.Holder.NationalID,
			TaxID:      m.Holder.TaxID,
		}
	}
	if m.Type != nil {
		typ := typeViewFromModel(m.Type)
		view.Type = &typ
	}
	return view
}

type historyEntryView struct {
	ID              uuid.UUID           `json:"id"`
	AuthorizationID *uuid.UUID          `json:"authorization_id,omitempty"`
	ActorID         *uuid.UUID          `json:"actor_id,omitempty"`
	ActorName       string              `json:"actor_name"`
	Action          enums.HistoryAction `json:"action"`
	Description     string              `json:"description"`
	CreatedAt       time.Time           `json:"created_at"`
}

func historyEntryViewFromModel(m *models.HistoryEntry) historyEntryView {
	return historyEntryView{
		ID:              m.ID,
		AuthorizationID: m.AuthorizationID,
		ActorID:         m.ActorID,
		ActorName:       m.ActorName,
		Action:          m.Action,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt,
	}
}

type listEnvelope[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
