package rules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

// profileSpec is the raw, declarative form of a country entry. Adding a
// jurisdiction is a data change here; validator logic never changes.
type profileSpec struct {
	country        string
	taxIDLabel     string
	taxIDPattern   string
	requiredFields []string
	currency       string
}

// Tax ID patterns encode format presence only, no checksum. Case-insensitive
// matching where letters may appear in the ID (Chilean verifier digit K,
// Spanish NIF letters).
var builtin = []profileSpec{
	{
		country:        "Chile",
		taxIDLabel:     "RUT",
		taxIDPattern:   `(?i)\b\d{1,2}\.\d{3}\.\d{3}-[\dK]\b`,
		requiredFields: []string{"Exporter", "Importer", "Invoice number", "Description of goods", "Total value", "Incoterm"},
		currency:       "CLP",
	},
	{
		country:        "Brazil",
		taxIDLabel:     "CNPJ",
		taxIDPattern:   `\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`,
		requiredFields: []string{"Exporter", "Importer", "Invoice number", "NCM code", "Description of goods", "Total value", "Incoterm"},
		currency:       "BRL",
	},
	{
		country:        "Argentina",
		taxIDLabel:     "CUIT",
		taxIDPattern:   `\b\d{2}-\d{8}-\d\b`,
		requiredFields: []string{"Exporter", "Importer", "Invoice number", "Description of goods", "Total value", "Incoterm"},
		currency:       "ARS",
	},
	{
		country:        "Spain",
		taxIDLabel:     "NIF",
		taxIDPattern:   `(?i)\b(?:[A-Z]\d{8}|\d{8}[A-Z])\b`,
		requiredFields: []string{"Exporter", "Importer", "Invoice number", "Description of goods", "Total value", "Incoterm"},
		currency:       "EUR",
	},
	{
		country:        "United States",
		taxIDLabel:     "EIN",
		taxIDPattern:   `\b\d{2}-\d{7}\b`,
		requiredFields: []string{"Exporter", "Importer", "Invoice number", "HTS code", "Description of goods", "Total value", "Incoterm"},
		currency:       "USD",
	},
}

// Catalog is the immutable per-country rule set, loaded once at startup.
type Catalog struct {
	profiles map[string]domain.CountryProfile
}

// NewCatalog builds the catalog from the built-in jurisdiction table.
func NewCatalog() (*Catalog, error) {
	return newCatalog(builtin)
}

// newCatalog validates every entry independently and fails construction on
// the first malformed one rather than partially loading.
func newCatalog(specs []profileSpec) (*Catalog, error) {
	profiles := make(map[string]domain.CountryProfile, len(specs))
	for _, s := range specs {
		if s.country == "" {
			return nil, fmt.Errorf("catalog entry with empty country name")
		}
		if _, dup := profiles[s.country]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate country", s.country)
		}
		if len(s.requiredFields) == 0 {
			return nil, fmt.Errorf("catalog entry %q: required fields list is empty", s.country)
		}
		re, err := regexp.Compile(s.taxIDPattern)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: compile tax ID pattern: %w", s.country, err)
		}
		profiles[s.country] = domain.CountryProfile{
			Country:        s.country,
			TaxIDLabel:     s.taxIDLabel,
			TaxIDPattern:   re,
			RequiredFields: s.requiredFields,
			Currency:       s.currency,
		}
	}
	return &Catalog{profiles: profiles}, nil
}

// ProfileFor returns the rule set for a jurisdiction.
func (c *Catalog) ProfileFor(country string) (domain.CountryProfile, error) {
	p, ok := c.profiles[country]
	if !ok {
		return domain.CountryProfile{}, fmt.Errorf("%w: %q", port.ErrUnknownCountry, country)
	}
	return p, nil
}

// Countries returns the supported jurisdiction keys, sorted.
func (c *Catalog) Countries() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
