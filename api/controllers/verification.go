package controllers

import (
	"net/http"
	"strings"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/internal/verification"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
)

// PublicVerify answers a scanned payload. The endpoint is unauthenticated;
// query keys mirror the compact payload format.
func PublicVerify(resolver *verification.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification resolver unavailable"))
			return
		}

		q := r.URL.Query()
		result, err := resolver.Verify(r.Context(), verification.Params{
			Plate:      strings.TrimSpace(q.Get("p")),
			HolderName: strings.TrimSpace(q.Get("n")),
			NationalID: strings.TrimSpace(q.Get("ci")),
			TaxID:      strings.TrimSpace(q.Get("r")),
			Number:     strings.TrimSpace(q.Get("a")),
			ExpiresOn:  strings.TrimSpace(q.Get("c")),
			TypeCode:   strings.TrimSpace(q.Get("ta")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
