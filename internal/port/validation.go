package port

import (
	"strings"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

// Validator defines a pluggable rule check (Strategy Pattern).
// Each validator is a pure function of (text, profile): no shared mutable
// state, callable in any order or concurrently.
type Validator interface {
	// Kind returns which check this validator performs.
	Kind() domain.CheckKind

	// Description returns a human-readable description of the check.
	Description() string

	// Check scans the raw document text against the country profile.
	Check(text string, profile domain.CountryProfile) domain.ValidationOutcome
}

// ValidationEngine runs validators in a fixed order and buckets their
// outcomes into a ValidationReport.
type ValidationEngine struct {
	validators []Validator
}

// NewValidationEngine creates an engine that runs the given validators in
// the order they are passed. Outputs are combined by this order, never by
// completion order, so repeated runs over identical input are identical.
func NewValidationEngine(validators ...Validator) *ValidationEngine {
	return &ValidationEngine{validators: validators}
}

// Validate runs every check against the profile and returns a fresh report.
// Missing fields are findings, not errors; the only error here is an empty
// or whitespace-only document, which would otherwise produce misleading
// universal failures.
func (e *ValidationEngine) Validate(text string, profile domain.CountryProfile) (*domain.ValidationReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	report := &domain.ValidationReport{
		CriticalErrors: []string{},
		Warnings:       []string{},
		Passed:         []string{},
	}
	for _, v := range e.validators {
		report.Add(v.Check(text, profile))
	}
	return report, nil
}

// Checks returns the kinds of the registered validators in execution order.
func (e *ValidationEngine) Checks() []domain.CheckKind {
	kinds := make([]domain.CheckKind, 0, len(e.validators))
	for _, v := range e.validators {
		kinds = append(kinds, v.Kind())
	}
	return kinds
}
