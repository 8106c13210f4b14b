package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/api/validators"
	"github.com/munitransit/permits-backend/internal/history"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
	"github.com/munitransit/permits-backend/pkg/pagination"
)

// HistoryList returns a cursor page of audit entries.
func HistoryList(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
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

		result, err := svc.List(r.Context(), history.ListParams{
			Action: strings.TrimSpace(r.URL.Query().Get("action")),
			From:   from,
			To:     to,
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := listEnvelope[historyEntryView]{Items: []historyEntryView{}, NextCursor: result.Cursor}
		for i := range result.Items {
			page.Items = append(page.Items, historyEntryViewFromModel(&result.Items[i]))
		}
		responses.WriteSuccess(w, page)
	}
}

// HistoryCounts returns per-action totals for the activity report.
func HistoryCounts(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		counts, err := svc.Counts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, counts)
	}
}

// HistoryClear wipes the audit trail.
func HistoryClear(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		deleted, err := svc.ClearAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}

type historyDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// HistoryDeleteSelected removes the named audit entries.
func HistoryDeleteSelected(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "history service unavailable"))
			return
		}

		var body historyDeleteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(body.IDs))
		for _, raw := range body.IDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ids must be uuids"))
				return
			}
			ids = append(ids, id)
		}

		deleted, err := svc.DeleteSelected(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}
