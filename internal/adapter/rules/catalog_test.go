package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

const prose = `This paragraph discusses general trade policy considerations
without quoting any identifiers. Shipments move between ports and the parties
negotiate delivery terms in plain language over several rounds.`

func TestNewCatalogBuildsValidProfiles(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	samples := map[string]string{
		"Chile":         "12.345.678-5",
		"Brazil":        "12.345.678/0001-95",
		"Argentina":     "30-12345678-9",
		"Spain":         "B12345678",
		"United States": "12-3456789",
	}

	for _, country := range catalog.Countries() {
		profile, err := catalog.ProfileFor(country)
		require.NoError(t, err)

		assert.NotEmpty(t, profile.RequiredFields, "%s: required fields must not be empty", country)
		assert.NotEmpty(t, profile.TaxIDLabel, country)
		assert.NotEmpty(t, profile.Currency, country)

		sample, ok := samples[country]
		require.True(t, ok, "no sample ID for %s", country)
		assert.True(t, profile.TaxIDPattern.MatchString(sample),
			"%s: pattern should match sample ID %q", country, sample)
		assert.False(t, profile.TaxIDPattern.MatchString(prose),
			"%s: pattern must not match unrelated prose", country)
	}
}

func TestProfileForCaseSensitiveKey(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	_, err = catalog.ProfileFor("chile")
	assert.ErrorIs(t, err, port.ErrUnknownCountry)
}

func TestProfileForUnknownCountry(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	_, err = catalog.ProfileFor("Atlantis")
	assert.ErrorIs(t, err, port.ErrUnknownCountry)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestCountriesSorted(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"Argentina", "Brazil", "Chile", "Spain", "United States"}, catalog.Countries())
}

func TestNewCatalogRejectsMalformedEntries(t *testing.T) {
	valid := profileSpec{
		country:        "Chile",
		taxIDLabel:     "RUT",
		taxIDPattern:   `\d+`,
		requiredFields: []string{"Exporter"},
		currency:       "CLP",
	}

	tests := []struct {
		name  string
		specs []profileSpec
	}{
		{
			name: "bad regex",
			specs: []profileSpec{valid, {
				country:        "Brokenland",
				taxIDLabel:     "TIN",
				taxIDPattern:   `[unclosed`,
				requiredFields: []string{"Exporter"},
				currency:       "XXX",
			}},
		},
		{
			name: "empty required fields",
			specs: []profileSpec{{
				country:      "Brokenland",
				taxIDLabel:   "TIN",
				taxIDPattern: `\d+`,
				currency:     "XXX",
			}},
		},
		{
			name:  "empty country name",
			specs: []profileSpec{{taxIDLabel: "TIN", taxIDPattern: `\d+`, requiredFields: []string{"x"}, currency: "XXX"}},
		},
		{
			name:  "duplicate country",
			specs: []profileSpec{valid, valid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := newCatalog(tt.specs)
			assert.Error(t, err)
			assert.Nil(t, catalog, "a malformed entry must fail the whole catalog, not partially load")
		})
	}
}
