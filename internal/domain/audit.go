package domain

import "time"

// VerdictState is the overall outcome of an audit.
type VerdictState string

const (
	VerdictPassed      VerdictState = "passed"
	VerdictFailed      VerdictState = "failed"
	VerdictNeedsReview VerdictState = "needs_review"
)

// Verdict is derived from a ValidationReport, never stored independently.
type Verdict struct {
	State         VerdictState `json:"state"`
	CriticalCount int          `json:"critical_count"`
	WarningCount  int          `json:"warning_count"`
}

// DeriveVerdict applies the fixed severity policy: any critical error fails
// the audit regardless of warnings; warnings alone request human review.
func DeriveVerdict(r *ValidationReport) Verdict {
	v := Verdict{
		CriticalCount: len(r.CriticalErrors),
		WarningCount:  len(r.Warnings),
	}
	switch {
	case v.CriticalCount > 0:
		v.State = VerdictFailed
	case v.WarningCount > 0:
		v.State = VerdictNeedsReview
	default:
		v.State = VerdictPassed
	}
	return v
}

// AuditResult is the unified output of one audit invocation. It is owned by
// the invocation that created it and is never persisted beyond the rendered
// report artifact.
type AuditResult struct {
	ID                string            `json:"id"`
	DocumentName      string            `json:"document_name"`
	Profile           CountryProfile    `json:"profile"`
	Report            *ValidationReport `json:"report"`
	Verdict           Verdict           `json:"verdict"`
	Narrative         string            `json:"narrative"`
	ReviewUnavailable bool              `json:"review_unavailable"`
	CreatedAt         time.Time         `json:"created_at"`
}
