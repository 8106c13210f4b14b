package authorizations

import (
	"net/url"

	"github.com/munitransit/permits-backend/pkg/db/models"
)

const (
	payloadNameMax   = 15
	payloadNumberMax = 20
	payloadTypeMax   = 3
)

// BuildPayload renders the compact verification URL a scannable code encodes.
// Keys stay single-letter to keep the code density low; empty values are
// omitted entirely. The row must have Holder and Type loaded.
func BuildPayload(baseURL string, row *models.Authorization) string {
	values := url.Values{}
	setPayloadValue(values, "p", row.Plate, 0)
	if row.Holder != nil {
		setPayloadValue(values, "n", row.Holder.FullName, payloadNameMax)
		setPayloadValue(values, "ci", deref(row.Holder.NationalID), 0)
		setPayloadValue(values, "r", deref(row.Holder.TaxID), 0)
	}
	setPayloadValue(values, "a", row.Number, payloadNumberMax)
	setPayloadValue(values, "c", row.ExpiresOn.Format("2006-01-02"), 0)
	if row.Type != nil {
		setPayloadValue(values, "ta", row.Type.Code, payloadTypeMax)
	}
	return baseURL + "?" + values.Encode()
}

func setPayloadValue(values url.Values, key, value string, max int) {
	if value == "" {
		return
	}
	if max > 0 {
		if runes := []rune(value); len(runes) > max {
			value = string(runes[:max])
		}
	}
	values.Set(key, value)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
