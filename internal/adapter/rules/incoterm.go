package rules

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

// Incoterms2020 is the canonical Incoterms 2020 list. When several terms
// appear in a document, the first one in this order is reported — canonical
// order, not text order, keeps the outcome deterministic.
var Incoterms2020 = []string{
	"EXW", "FCA", "CPT", "CIP", "DAP", "DPU", "DDP", "FAS", "FOB", "CFR", "CIF",
}

// IncotermValidator checks for the presence of an Incoterms 2020 delivery
// term. Matching is substring-based over the uppercased text, a knowingly
// loose heuristic (a term embedded in an unrelated word still counts).
type IncotermValidator struct{}

func NewIncotermValidator() *IncotermValidator { return &IncotermValidator{} }

func (v *IncotermValidator) Kind() domain.CheckKind { return domain.CheckIncoterm }
func (v *IncotermValidator) Description() string {
	return "Incoterms 2020 delivery term presence"
}

func (v *IncotermValidator) Check(text string, profile domain.CountryProfile) domain.ValidationOutcome {
	upper := strings.ToUpper(text)
	for _, term := range Incoterms2020 {
		if strings.Contains(upper, term) {
			return domain.ValidationOutcome{
				Kind:    domain.CheckIncoterm,
				Passed:  true,
				Message: fmt.Sprintf("Incoterm present: %s", term),
				Value:   term,
			}
		}
	}
	return domain.ValidationOutcome{
		Kind:    domain.CheckIncoterm,
		Passed:  false,
		Message: fmt.Sprintf("no Incoterm found: expected one of %s", strings.Join(Incoterms2020, ", ")),
	}
}
