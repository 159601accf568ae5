package domain

import "regexp"

// CountryProfile holds the customs rule set for one jurisdiction.
// Profiles are built once at startup and never mutated afterwards.
type CountryProfile struct {
	Country        string         `json:"country"`
	TaxIDLabel     string         `json:"tax_id_label"`
	TaxIDPattern   *regexp.Regexp `json:"-"`
	RequiredFields []string       `json:"required_fields"`
	Currency       string         `json:"currency"`
}
