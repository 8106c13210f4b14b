package enums

import "fmt"

// AuthorizationState is a derived listing filter, not a stored column. Expiry
// is computed from expires_on, so the state never materializes in the row.
type AuthorizationState string

const (
	AuthorizationStateActive   AuthorizationState = "active"
	AuthorizationStateExpired  AuthorizationState = "expired"
	AuthorizationStateInactive AuthorizationState = "inactive"
)

var validAuthorizationStates = []AuthorizationState{
	AuthorizationStateActive,
	AuthorizationStateExpired,
	AuthorizationStateInactive,
}

// String implements fmt.Stringer.
func (s AuthorizationState) String() string {
	return string(s)
}

// IsValid reports whether the value matches a recognized listing state.
func (s AuthorizationState) IsValid() bool {
	for _, candidate := range validAuthorizationStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuthorizationState converts raw input into AuthorizationState.
func ParseAuthorizationState(value string) (AuthorizationState, error) {
	for _, candidate := range validAuthorizationStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid authorization state %q", value)
}
