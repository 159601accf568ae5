package rules

import (
	"fmt"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

// TaxIDValidator checks that the profile's tax ID format appears in the text.
// A match confirms format presence only — no checksum is verified, so the
// message must not claim the ID itself is valid.
type TaxIDValidator struct{}

func NewTaxIDValidator() *TaxIDValidator { return &TaxIDValidator{} }

func (v *TaxIDValidator) Kind() domain.CheckKind { return domain.CheckTaxID }
func (v *TaxIDValidator) Description() string {
	return "Tax ID format presence (no checksum verification)"
}

func (v *TaxIDValidator) Check(text string, profile domain.CountryProfile) domain.ValidationOutcome {
	match := profile.TaxIDPattern.FindString(text)
	if match == "" {
		return domain.ValidationOutcome{
			Kind:    domain.CheckTaxID,
			Passed:  false,
			Message: fmt.Sprintf("%s not found: nothing in the document matches the expected %s format for %s", profile.TaxIDLabel, profile.TaxIDLabel, profile.Country),
		}
	}
	return domain.ValidationOutcome{
		Kind:    domain.CheckTaxID,
		Passed:  true,
		Message: fmt.Sprintf("%s format present: %q (format only, checksum not verified)", profile.TaxIDLabel, match),
		Value:   match,
	}
}
