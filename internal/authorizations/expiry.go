package authorizations

import (
	"time"

	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/munitransit/permits-backend/pkg/enums"
)

// IsExpired reports whether a permit has lapsed. A permit stays usable
// through its expiry date and lapses the day after.
func IsExpired(expiresOn, today time.Time) bool {
	cutoff := dateOnly(expiresOn).AddDate(0, 0, 1)
	return !dateOnly(today).Before(cutoff)
}

// DaysRemaining returns whole days until expiry, floored at zero.
func DaysRemaining(expiresOn, today time.Time) int {
	days := int(dateOnly(expiresOn).Sub(dateOnly(today)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// StateOf derives the display state of a permit. Inactive wins over expired
// so a deactivated permit never reads as merely lapsed.
func StateOf(row *models.Authorization, today time.Time) enums.AuthorizationState {
	if !row.IsActive {
		return enums.AuthorizationStateInactive
	}
	if IsExpired(row.ExpiresOn, today) {
		return enums.AuthorizationStateExpired
	}
	return enums.AuthorizationStateActive
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
