package identity

import (
	"regexp"
	"strings"

	"github.com/munitransit/permits-backend/pkg/enums"
)

var (
	nationalIDRe = regexp.MustCompile(`^09\d{8}$`)
	taxIDRe      = regexp.MustCompile(`^\d{13}$`)
	phoneRe      = regexp.MustCompile(`^09\d{8}$`)
	emailRe      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Input is the holder identity block of a registration or update request.
type Input struct {
	Mode       enums.IdentificationMode
	FullName   string
	NationalID string
	TaxID      string
	Email      string
	Phone      string
}

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string][]string

// Add appends a message under the given field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Result carries field-level and form-level validation failures.
type Result struct {
	Fields FieldErrors `json:"fields,omitempty"`
	Form   []string    `json:"form,omitempty"`
}

// Ok reports whether the input passed every check.
func (r Result) Ok() bool {
	return len(r.Fields) == 0 && len(r.Form) == 0
}

// Clean trims every free-text field so downstream matching and persistence
// see canonical values.
func Clean(in Input) Input {
	in.FullName = strings.TrimSpace(in.FullName)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// Validate applies the identity rules for the requested identification mode.
// Identifier requiredness depends on the mode; formats are checked whenever a
// value is present, required or not. The final cross-field check rejects
// inputs where both identifiers ended up blank regardless of mode.
func Validate(in Input) Result {
	in = Clean(in)
	res := Result{Fields: FieldErrors{}}

	if in.FullName == "" {
		res.Fields.Add("full_name", "full name is required")
	}

	if !in.Mode.IsValid() {
		res.Fields.Add("identification_mode", "identification mode must be national_id, tax_id, or both")
		return res
	}

	requireNational := in.Mode == enums.IdentificationModeNationalID || in.Mode == enums.IdentificationModeBoth
	requireTax := in.Mode == enums.IdentificationModeTaxID || in.Mode == enums.IdentificationModeBoth

	switch {
	case in.NationalID == "" && requireNational:
		res.Fields.Add("national_id", "national id is required for this identification mode")
	case in.NationalID != "" && !nationalIDRe.MatchString(in.NationalID):
		res.Fields.Add("national_id", "national id must be 10 digits starting with 09")
	}

	switch {
	case in.TaxID == "" && requireTax:
		res.Fields.Add("tax_id", "tax id is required for this identification mode")
	case in.TaxID != "" && !taxIDRe.MatchString(in.TaxID):
		res.Fields.Add("tax_id", "tax id must be exactly 13 digits")
	}

	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		res.Fields.Add("phone", "phone must be 10 digits starting with 09")
	}

	if in.Email != "" && !emailRe.MatchString(in.Email) {
		res.Fields.Add("email", "email is not a valid address")
	}

	if in.NationalID == "" && in.TaxID == "" {
		res.Form = append(res.Form, "at least one of national id or tax id is required")
	}

	if len(res.Fields) == 0 {
		res.Fields = nil
	}
	return res
}
