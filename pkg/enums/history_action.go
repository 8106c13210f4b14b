package enums

import "fmt"

// HistoryAction maps to the history_action enum in Postgres.
type HistoryAction string

const (
	HistoryActionGenerateCode               HistoryAction = "generate_code"
	HistoryActionDownloadCode               HistoryAction = "download_code"
	HistoryActionDownloadDocument           HistoryAction = "download_document"
	HistoryActionUpdateAuthorization        HistoryAction = "update_authorization"
	HistoryActionUpdateHolder               HistoryAction = "update_holder"
	HistoryActionDeleteAuthorization        HistoryAction = "delete_authorization"
	HistoryActionDeleteHolder               HistoryAction = "delete_holder"
	HistoryActionDeleteAuthorizationCascade HistoryAction = "delete_authorization_cascade"
	HistoryActionDeleteHolderCascade        HistoryAction = "delete_holder_cascade"
)

var validHistoryActions = []HistoryAction{
	HistoryActionGenerateCode,
	HistoryActionDownloadCode,
	HistoryActionDownloadDocument,
	HistoryActionUpdateAuthorization,
	HistoryActionUpdateHolder,
	HistoryActionDeleteAuthorization,
	HistoryActionDeleteHolder,
	HistoryActionDeleteAuthorizationCascade,
	HistoryActionDeleteHolderCascade,
}

// String implements fmt.Stringer.
func (a HistoryAction) String() string {
	return string(a)
}

// IsValid reports whether the value matches the canonical history_action enum.
func (a HistoryAction) IsValid() bool {
	for _, candidate := range validHistoryActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseHistoryAction converts raw input into HistoryAction.
func ParseHistoryAction(value string) (HistoryAction, error) {
	for _, candidate := range validHistoryActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid history action %q", value)
}
