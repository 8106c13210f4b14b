package enums

import "fmt"

// IdentificationMode maps to the identification_mode enum in Postgres. It
// controls which identifiers a registration must carry for the holder.
type IdentificationMode string

const (
	IdentificationModeNationalID IdentificationMode = "national_id"
	IdentificationModeTaxID      IdentificationMode = "tax_id"
	IdentificationModeBoth       IdentificationMode = "both"
)

var validIdentificationModes = []IdentificationMode{
	IdentificationModeNationalID,
	IdentificationModeTaxID,
	IdentificationModeBoth,
}

// String implements fmt.Stringer.
func (m IdentificationMode) String() string {
	return string(m)
}

// IsValid reports whether the value matches the canonical identification_mode enum.
func (m IdentificationMode) IsValid() bool {
	for _, candidate := range validIdentificationModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseIdentificationMode converts raw input into IdentificationMode.
func ParseIdentificationMode(value string) (IdentificationMode, error) {
	for _, candidate := range validIdentificationModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid identification mode %q", value)
}
