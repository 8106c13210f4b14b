package authorizations

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/munitransit/permits-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadFixture() *models.Authorization {
	national := "0912345678"
	tax := "0912345678001"
	return &models.Authorization{
		Plate:     "GBA-1234",
		Number:    "AUT-2026-000123",
		ExpiresOn: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Holder: &models.Holder{
			FullName:   "Juan Alberto Pérez Castillo",
			NationalID: &national,
			TaxID:      &tax,
		},
		Type: &models.AuthorizationType{Code: "AUT-001"},
	}
}

func TestBuildPayloadIncludesEveryField(t *testing.T) {
	raw := BuildPayload("https://permits.example.gob.ec/verify", payloadFixture())

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/verify", parsed.Path)

	values := parsed.Query()
	assert.Equal(t, "GBA-1234", values.Get("p"))
	assert.Equal(t, "0912345678", values.Get("ci"))
	assert.Equal(t, "0912345678001", values.Get("r"))
	assert.Equal(t, "2026-03-10", values.Get("c"))

	// name capped at 15 characters, number at 20, type code at 3
	assert.Equal(t, "Juan Alberto Pé", values.Get("n"))
	assert.Equal(t, "AUT-2026-000123", values.Get("a"))
	assert.Equal(t, "AUT", values.Get("ta"))
}

func TestBuildPayloadOmitsEmptyFields(t *testing.T) {
	row := payloadFixture()
	row.Holder.TaxID = nil

	raw := BuildPayload("https://permits.example.gob.ec/verify", row)
	values, err := url.ParseQuery(strings.SplitN(raw, "?", 2)[1])
	require.NoError(t, err)

	_, hasTax := values["r"]
	assert.False(t, hasTax)
	assert.Equal(t, "0912345678", values.Get("ci"))
}

func TestBuildPayloadWithoutAssociations(t *testing.T) {
	row := &models.Authorization{
		Plate:     "GBA-1234",
		Number:    "N-1",
		ExpiresOn: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}

	raw := BuildPayload("https://permits.example.gob.ec/verify", row)
	values, err := url.ParseQuery(strings.SplitN(raw, "?", 2)[1])
	require.NoError(t, err)

	assert.Equal(t, "GBA-1234", values.Get("p"))
	assert.Empty(t, values.Get("n"))
	assert.Empty(t, values.Get("ta"))
}
