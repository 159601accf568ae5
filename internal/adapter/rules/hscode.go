package rules

import (
	"fmt"
	"regexp"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

// hsCodePattern is a loose grouping heuristic: 4 digits, optional dot,
// 2 digits, optionally a dot and up to 4 more digits. It can match prices
// like 1234.56; a miss is only a warning because HS codes frequently live in
// table layouts that plain text extraction mangles.
var hsCodePattern = regexp.MustCompile(`\b\d{4}\.?\d{2}(?:\.?\d{1,4})?\b`)

// HSCodeValidator checks for HS/NCM-style numeric classification groupings.
type HSCodeValidator struct{}

func NewHSCodeValidator() *HSCodeValidator { return &HSCodeValidator{} }

func (v *HSCodeValidator) Kind() domain.CheckKind { return domain.CheckHSCode }
func (v *HSCodeValidator) Description() string {
	return "HS/NCM classification code grouping presence"
}

func (v *HSCodeValidator) Check(text string, profile domain.CountryProfile) domain.ValidationOutcome {
	matches := hsCodePattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return domain.ValidationOutcome{
			Kind:    domain.CheckHSCode,
			Passed:  false,
			Message: "no HS/NCM code grouping found: codes are often lost by text extraction, verify the source document",
		}
	}
	return domain.ValidationOutcome{
		Kind:    domain.CheckHSCode,
		Passed:  true,
		Message: fmt.Sprintf("HS/NCM code grouping present: %d candidate(s), first %q", len(matches), matches[0]),
		Value:   matches[0],
	}
}
