package controllers

import (
	"net/http"
	"time"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/internal/dashboard"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
)

type dashboardResponse struct {
	TotalAuthorizations   int64                 `json:"total_authorizations"`
	ActiveAuthorizations  int64                 `json:"active_authorizations"`
	ExpiredAuthorizations int64                 `json:"expired_authorizations"`
	TotalHolders          int64                 `json:"total_holders"`
	ByType                []dashboard.TypeCount `json:"by_type"`
	LatestAuthorizations  []authorizationView   `json:"latest_authorizations"`
	LatestActivity        []historyEntryView    `json:"latest_activity"`
}

// DashboardOverview returns the aggregate snapshot the landing page renders.
func DashboardOverview(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		resp := dashboardResponse{
			TotalAuthorizations:   overview.TotalAuthorizations,
			ActiveAuthorizations:  overview.ActiveAuthorizations,
			ExpiredAuthorizations: overview.ExpiredAuthorizations,
			TotalHolders:          overview.TotalHolders,
			ByType:                overview.ByType,
			LatestAuthorizations:  []authorizationView{},
			LatestActivity:        []historyEntryView{},
		}
		for i := range overview.LatestAuthorizations {
			resp.LatestAuthorizations = append(resp.LatestAuthorizations, authorizationViewFromModel(&overview.LatestAuthorizations[i], now))
		}
		for i := range overview.LatestActivity {
			resp.LatestActivity = append(resp.LatestActivity, historyEntryViewFromModel(&overview.LatestActivity[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}
