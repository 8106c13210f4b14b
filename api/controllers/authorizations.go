package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/api/validators"
	"github.com/munitransit/permits-backend/internal/authorizations"
	"github.com/munitransit/permits-backend/internal/cascade"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
	"github.com/munitransit/permits-backend/pkg/pagination"
)

// AuthorizationList returns a cursor page of permits matching the filters.
func AuthorizationList(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "authorizations service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		typeID, err := validators.ParseQueryUUID(r, "type_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), authorizations.ListParams{
			SearchField: strings.TrimSpace(r.URL.Query().Get("search_field")),
			Search:      validators.SanitizeString(r.URL.Query().Get("search"), 120),
			TypeID:      typeID,
			State:       strings.TrimSpace(r.URL.Query().Get("state")),
			From:        from,
			To:          to,
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		page := listEnvelope[authorizationView]{Items: []authorizationView{}, NextCursor: result.Cursor}
		for i := range result.Items {
			page.Items = append(page.Items, authorizationViewFromModel(&result.Items[i], now))
		}
		responses.WriteSuccess(w, page)
	}
}

// AuthorizationDetail returns one permit with holder and type preloaded.
func AuthorizationDetail(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withAuthorization(svc, logg, w, r, func(id uuid.UUID) (any, error) {
			row, err := svc.Get(r.Context(), id)
			if err != nil {
				return nil, err
			}
			return authorizationViewFromModel(row, time.Now()), nil
		})
	}
}

type authorizationUpdateRequest struct {
	ExpiresOn *string `json:"expires_on"`
	IsActive  *bool   `json:"is_active"`
}

// AuthorizationUpdate edits the expiry date and the active flag.
func AuthorizationUpdate(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "authorizations service unavailable"))
			return
		}

		id, err := parseIDParam(r, "authorizationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body authorizationUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := authorizations.UpdateInput{IsActive: body.IsActive}
		if body.ExpiresOn != nil {
			parsed, err := time.Parse(dateLayout, strings.TrimSpace(*body.ExpiresOn))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "expires_on must be an ISO date"))
				return
			}
			input.ExpiresOn = &parsed
		}

		updated, err := svc.Update(r.Context(), id, input, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, authorizationViewFromModel(updated, time.Now()))
	}
}

// AuthorizationDelete removes a permit; when it was the holder's last one the
// cascade takes the holder with it.
func AuthorizationDelete(coordinator *cascade.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coordinator == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cascade coordinator unavailable"))
			return
		}

		id, err := parseIDParam(r, "authorizationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := coordinator.DeleteAuthorization(r.Context(), id, actorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AuthorizationGenerateCode builds the scannable verification payload.
func AuthorizationGenerateCode(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withAuthorization(svc, logg, w, r, func(id uuid.UUID) (any, error) {
			row, err := svc.GeneratePayload(r.Context(), id, actorFromContext(r.Context()))
			if err != nil {
				return nil, err
			}
			return authorizationViewFromModel(row, time.Now()), nil
		})
	}
}

// AuthorizationDownloadCode stamps a code download. Refused for expired permits.
func AuthorizationDownloadCode(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withAuthorization(svc, logg, w, r, func(id uuid.UUID) (any, error) {
			row, err := svc.DownloadCode(r.Context(), id, actorFromContext(r.Context()))
			if err != nil {
				return nil, err
			}
			return authorizationViewFromModel(row, time.Now()), nil
		})
	}
}

// AuthorizationDownloadDocument stamps a document download. Refused for
// expired permits.
func AuthorizationDownloadDocument(svc authorizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withAuthorization(svc, logg, w, r, func(id uuid.UUID) (any, error) {
			row, err := svc.DownloadDocument(r.Context(), id, actorFromContext(r.Context()))
			if err != nil {
				return nil, err
			}
			return authorizationViewFromModel(row, time.Now()), nil
		})
	}
}

func withAuthorization(svc authorizations.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request, fn func(id uuid.UUID) (any, error)) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "authorizations service unavailable"))
		return
	}

	id, err := parseIDParam(r, "authorizationId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	payload, err := fn(id)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccess(w, payload)
}
