package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/munitransit/permits-backend/internal/authorizations"
	"github.com/munitransit/permits-backend/pkg/db/models"
	pkgerrors "github.com/munitransit/permits-backend/pkg/errors"
	"gorm.io/gorm"
)

// Kind classifies the outcome of a verification scan.
type Kind string

const (
	KindValid       Kind = "valid"
	KindExpired     Kind = "expired"
	KindIncomplete  Kind = "incomplete"
	KindInvalidDate Kind = "invalid_date"
)

// Params are the scanned query values. Field names mirror the compact
// payload keys.
type Params struct {
	Plate      string // p
	HolderName string // n
	NationalID string // ci
	TaxID      string // r
	Number     string // a
	ExpiresOn  string // c
	TypeCode   string // ta
}

// Result is what the public lookup page renders. Verified is true only when
// the permit was found in storage; otherwise the echoed payload fields are
// all the scanner has to go on.
type Result struct {
	Kind       Kind       `json:"kind"`
	Verified   bool       `json:"verified"`
	Message    string     `json:"message"`
	Plate      string     `json:"plate,omitempty"`
	HolderName string     `json:"holder_name,omitempty"`
	NationalID string     `json:"national_id,omitempty"`
	TaxID      string     `json:"tax_id,omitempty"`
	Number     string     `json:"number,omitempty"`
	TypeName   string     `json:"type_name,omitempty"`
	ExpiresOn  *time.Time `json:"expires_on,omitempty"`
}

type permitFinder interface {
	FindActiveByPlateNumber(ctx context.Context, plate, number string) (*models.Authorization, error)
}

// Resolver answers public verification scans.
type Resolver struct {
	finder permitFinder
	now    func() time.Time
}

// NewResolver builds the verification resolver.
func NewResolver(finder permitFinder) (*Resolver, error) {
	if finder == nil {
		return nil, fmt.Errorf("permit finder required")
	}
	return &Resolver{finder: finder, now: time.Now}, nil
}

const dateLayout = "2006-01-02"

// Verify resolves one scan. Storage is authoritative when the plate+number
// pair matches an active permit; otherwise the payload itself is judged so a
// scan still renders something useful offline from the database's view.
func (r *Resolver) Verify(ctx context.Context, params Params) (*Result, error) {
	if params.Plate == "" || params.HolderName == "" || params.Number == "" || params.ExpiresOn == "" {
		return &Result{
			Kind:    KindIncomplete,
			Message: "authorization data is incomplete",
		}, nil
	}

	row, err := r.finder.FindActiveByPlateNumber(ctx, params.Plate, params.Number)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify authorization")
	}

	if row != nil {
		return r.fromStorage(row, params), nil
	}
	return r.fromPayload(params), nil
}

func (r *Resolver) fromStorage(row *models.Authorization, params Params) *Result {
	expired := authorizations.IsExpired(row.ExpiresOn, r.now())
	expiresOn := row.ExpiresOn

	result := &Result{
		Verified:  true,
		Plate:     row.Plate,
		Number:    row.Number,
		ExpiresOn: &expiresOn,
	}
	if row.Holder != nil {
		result.HolderName = row.Holder.FullName
		result.NationalID = deref(row.Holder.NationalID)
		result.TaxID = deref(row.Holder.TaxID)
	} else {
		result.HolderName = params.HolderName
		result.NationalID = params.NationalID
		result.TaxID = params.TaxID
	}
	if row.Type != nil {
		result.TypeName = row.Type.Name
	}

	finish(result, expired)
	return result
}

func (r *Resolver) fromPayload(params Params) *Result {
	expiresOn, err := time.Parse(dateLayout, params.ExpiresOn)
	if err != nil {
		return &Result{
			Kind:    KindInvalidDate,
			Message: "invalid expiry date format",
		}
	}

	result := &Result{
		Verified:   false,
		Plate:      params.Plate,
		HolderName: params.HolderName,
		NationalID: params.NationalID,
		TaxID:      params.TaxID,
		Number:     params.Number,
		ExpiresOn:  &expiresOn,
	}
	finish(result, authorizations.IsExpired(expiresOn, r.now()))
	return result
}

func finish(result *Result, expired bool) {
	if expired {
		result.Kind = KindExpired
		result.Message = "authorization has expired and is no longer valid"
		return
	}
	result.Kind = KindValid
	result.Message = fmt.Sprintf("authorization valid for plate %s", result.Plate)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
