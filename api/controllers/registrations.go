package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munitransit/permits-backend/api/responses"
	"github.com/munitransit/permits-backend/api/validators"
	"github.com/munitransit/permits-backend/internal/identity"
	"github.com/munitransit/permits-backend/internal/registrations"
	"github.com/munitransit/permits-backend/pkg/enums"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"github.com/munitransit/permits-backend/pkg/logger"
)

type registrationRequest struct {
	Mode       string `json:"mode" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	NationalID string `json:"national_id"`
	TaxID      string `json:"tax_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	TypeID     string `json:"type_id" validate:"required"`
	Plate      string `json:"plate" validate:"required"`
	Number     string `json:"number" validate:"required"`
	ExpiresOn  string `json:"expires_on" validate:"required"`
}

func (r registrationRequest) toInput() (registrations.Input, error) {
	mode, err := enums.ParseIdentificationMode(strings.TrimSpace(r.Mode))
	if err != nil {
		return registrations.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid identification mode")
	}

	typeID, err := uuid.Parse(strings.TrimSpace(r.TypeID))
	if err != nil {
		return registrations.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type_id")
	}

	expiresOn, err := time.Parse(dateLayout, strings.TrimSpace(r.ExpiresOn))
	if err != nil {
		return registrations.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "expires_on must be an ISO date")
	}

	return registrations.Input{
		Identity: identity.Input{
			Mode:       mode,
			FullName:   r.FullName,
			NationalID: r.NationalID,
			TaxID:      r.TaxID,
			Email:      r.Email,
			Phone:      r.Phone,
		},
		TypeID:    typeID,
		Plate:     r.Plate,
		Number:    r.Number,
		ExpiresOn: expiresOn,
	}, nil
}

type registrationResponse struct {
	Holder        holderView        `json:"holder"`
	HolderCreated bool              `json:"holder_created"`
	Authorization authorizationView `json:"authorization"`
}

// Register handles the one-shot issuance form: holder identity plus permit.
func Register(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		var body registrationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), input, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		responses.WriteSuccessStatus(w, http.StatusCreated, registrationResponse{
			Holder:        holderViewFromModel(result.Holder, now),
			HolderCreated: result.HolderCreated,
			Authorization: authorizationViewFromModel(result.Authorization, now),
		})
	}
}
