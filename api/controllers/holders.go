package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/api/validators"
	"github.com/munitransit/permits-backend/internal/cascade"
	"github.com/munitransit/permits-backend/internal/holders"
	"github.com/munitransit/permits-backend/internal/identity"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
	"github.com/munitransit/permits-backend/pkg/pagination"
)

// HolderList returns a cursor page of holders matching the search filters.
func HolderList(svc holders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "holders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activeOnly, err := validators.ParseQueryBool(r, "active_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), holders.ListParams{
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), 120),
			ActiveOnly: activeOnly,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		page := listEnvelope[holderView]{Items: []holderView{}, NextCursor: result.Cursor}
		for i := range result.Items {
			page.Items = append(page.Items, holderViewFromModel(&result.Items[i], now))
		}
		responses.WriteSuccess(w, page)
	}
}

// HolderDetail returns one holder with its permits preloaded.
func HolderDetail(svc holders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "holders service unavailable"))
			return
		}

		id, err := parseIDParam(r, "holderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, holderViewFromModel(row, time.Now()))
	}
}

type holderUpdateRequest struct {
	Mode       string `json:"mode" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	NationalID string `json:"national_id"`
	TaxID      string `json:"tax_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	IsActive   *bool  `json:"is_active"`
}

// HolderUpdate edits the holder identity block and optionally the active flag.
func HolderUpdate(svc holders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "holders service unavailable"))
			return
		}

		id, err := parseIDParam(r, "holderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body holderUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseIdentificationMode(strings.TrimSpace(body.Mode))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid identification mode"))
			return
		}

		updated, err := svc.Update(r.Context(), id, holders.UpdateInput{
			Identity: identity.Input{
				Mode:       mode,
				FullName:   body.FullName,
				NationalID: body.NationalID,
				TaxID:      body.TaxID,
				Email:      body.Email,
				Phone:      body.Phone,
			},
			IsActive: body.IsActive,
		}, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, holderViewFromModel(updated, time.Now()))
	}
}

// HolderDelete removes a holder and cascades over its permits.
func HolderDelete(coordinator *cascade.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coordinator == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cascade coordinator unavailable"))
			return
		}

		id, err := parseIDParam(r, "holderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := coordinator.DeleteHolder(r.Context(), id, actorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
