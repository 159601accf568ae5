package domain

// CheckKind identifies which rule check produced an outcome.
type CheckKind string

const (
	CheckTaxID    CheckKind = "tax_id"
	CheckIncoterm CheckKind = "incoterm"
	CheckHSCode   CheckKind = "hs_code"
)

// Severity is the tier a failed check falls into.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Severity returns the tier a failure of this check belongs to.
// Tax ID and Incoterm failures always fail the audit; a missing HS/NCM
// code only degrades confidence (codes are often lost by text extraction).
func (k CheckKind) Severity() Severity {
	if k == CheckHSCode {
		return SeverityWarning
	}
	return SeverityCritical
}

// ValidationOutcome is the result of one rule check over the document text.
// Outcomes are never mutated after creation.
type ValidationOutcome struct {
	Kind    CheckKind `json:"kind"`
	Passed  bool      `json:"passed"`
	Message string    `json:"message"`
	Value   string    `json:"value,omitempty"` // extracted value, if any
}

// ValidationReport buckets outcome messages by tier for one audit run.
// Insertion order follows check execution order and must be preserved
// for deterministic rendering.
type ValidationReport struct {
	CriticalErrors []string `json:"critical_errors"`
	Warnings       []string `json:"warnings"`
	Passed         []string `json:"passed"`
}

// Add appends an outcome's message to the bucket its classification demands.
// Nothing is ever dropped or deduplicated.
func (r *ValidationReport) Add(o ValidationOutcome) {
	switch {
	case o.Passed:
		r.Passed = append(r.Passed, o.Message)
	case o.Kind.Severity() == SeverityWarning:
		r.Warnings = append(r.Warnings, o.Message)
	default:
		r.CriticalErrors = append(r.CriticalErrors, o.Message)
	}
}
