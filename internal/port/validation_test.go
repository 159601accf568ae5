package port_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

// stubValidator returns a fixed outcome, recording nothing. Used to test the
// engine's ordering and bucketing independent of the real rule checks.
type stubValidator struct {
	kind    domain.CheckKind
	outcome domain.ValidationOutcome
}

func (s stubValidator) Kind() domain.CheckKind { return s.kind }
func (s stubValidator) Description() string    { return string(s.kind) }
func (s stubValidator) Check(text string, profile domain.CountryProfile) domain.ValidationOutcome {
	return s.outcome
}

func passing(kind domain.CheckKind, msg string) stubValidator {
	return stubValidator{kind: kind, outcome: domain.ValidationOutcome{Kind: kind, Passed: true, Message: msg}}
}

func failing(kind domain.CheckKind, msg string) stubValidator {
	return stubValidator{kind: kind, outcome: domain.ValidationOutcome{Kind: kind, Passed: false, Message: msg}}
}

func TestValidateBucketsByTierPreservingOrder(t *testing.T) {
	engine := port.NewValidationEngine(
		failing(domain.CheckTaxID, "tax id missing"),
		failing(domain.CheckIncoterm, "incoterm missing"),
		failing(domain.CheckHSCode, "hs code missing"),
	)

	report, err := engine.Validate("some invoice text", domain.CountryProfile{})
	require.NoError(t, err)

	assert.Equal(t, []string{"tax id missing", "incoterm missing"}, report.CriticalErrors)
	assert.Equal(t, []string{"hs code missing"}, report.Warnings)
	assert.Empty(t, report.Passed)
}

func TestValidateKeepsDuplicateMessages(t *testing.T) {
	engine := port.NewValidationEngine(
		failing(domain.CheckTaxID, "missing"),
		failing(domain.CheckIncoterm, "missing"),
	)

	report, err := engine.Validate("text", domain.CountryProfile{})
	require.NoError(t, err)
	assert.Equal(t, []string{"missing", "missing"}, report.CriticalErrors)
}

func TestValidateDeterministic(t *testing.T) {
	engine := port.NewValidationEngine(
		passing(domain.CheckTaxID, "tax ok"),
		failing(domain.CheckIncoterm, "incoterm missing"),
		passing(domain.CheckHSCode, "hs ok"),
	)

	first, err := engine.Validate("text", domain.CountryProfile{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := engine.Validate("text", domain.CountryProfile{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValidateIndependentReportsPerRun(t *testing.T) {
	engine := port.NewValidationEngine(passing(domain.CheckTaxID, "ok"))

	first, err := engine.Validate("text", domain.CountryProfile{})
	require.NoError(t, err)
	second, err := engine.Validate("text", domain.CountryProfile{})
	require.NoError(t, err)

	first.Passed = append(first.Passed, "mutated")
	assert.Len(t, second.Passed, 1, "reports must not share state across runs")
}

func TestValidateRejectsEmptyDocument(t *testing.T) {
	engine := port.NewValidationEngine(passing(domain.CheckTaxID, "ok"))

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		report, err := engine.Validate(text, domain.CountryProfile{})
		assert.ErrorIs(t, err, port.ErrEmptyDocument)
		assert.Nil(t, report)
	}
}

func TestChecksReportsExecutionOrder(t *testing.T) {
	engine := port.NewValidationEngine(
		passing(domain.CheckTaxID, "ok"),
		passing(domain.CheckIncoterm, "ok"),
		passing(domain.CheckHSCode, "ok"),
	)

	assert.Equal(t,
		[]domain.CheckKind{domain.CheckTaxID, domain.CheckIncoterm, domain.CheckHSCode},
		engine.Checks(),
	)
}
