package report

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

func sampleResult() *domain.AuditResult {
	rep := &domain.ValidationReport{
		CriticalErrors: []string{"RUT not found"},
		Warnings:       []string{"no HS/NCM code grouping found"},
		Passed:         []string{"Incoterm present: FOB"},
	}
	return &domain.AuditResult{
		ID:           "a6cb7a6e-0000-0000-0000-000000000000",
		DocumentName: "invoice.pdf",
		Profile: domain.CountryProfile{
			Country:        "Chile",
			TaxIDLabel:     "RUT",
			TaxIDPattern:   regexp.MustCompile(`\d+`),
			RequiredFields: []string{"Exporter"},
			Currency:       "CLP",
		},
		Report:    rep,
		Verdict:   domain.DeriveVerdict(rep),
		Narrative: "## High Priority Issues\nMissing RUT.\n\nConfidence: 7/10",
		CreatedAt: time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
	}
}

func TestRenderIsByteIdentical(t *testing.T) {
	res := sampleResult()
	first := Render(res)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Render(res))
	}
}

func TestRenderLayout(t *testing.T) {
	out := Render(sampleResult())

	assert.Contains(t, out, "CUSTOMS AUDIT REPORT")
	assert.Contains(t, out, "Generated: 2026-08-29T14:30:00Z")
	assert.Contains(t, out, "Country:   Chile (currency CLP)")
	assert.Contains(t, out, "Document:  invoice.pdf")
	assert.Contains(t, out, "Verdict:   FAILED (1 critical, 1 warning)")

	// Counts precede the itemized lists.
	assert.Contains(t, out, "Critical errors (1):\n  1. RUT not found")
	assert.Contains(t, out, "Warnings (1):\n  1. no HS/NCM code grouping found")
	assert.Contains(t, out, "Passed checks (1):\n  1. Incoterm present: FOB")

	// Narrative is appended verbatim at the end.
	assert.True(t, strings.HasSuffix(out, "Confidence: 7/10\n"))

	// Sections appear in fixed order.
	rules := strings.Index(out, "--- RULE CHECKS ---")
	ai := strings.Index(out, "--- CONTEXTUAL REVIEW ---")
	require.True(t, rules >= 0 && ai >= 0)
	assert.Less(t, rules, ai)
}

func TestRenderMarksUnavailableReview(t *testing.T) {
	res := sampleResult()
	res.Narrative = ""
	res.ReviewUnavailable = true

	out := Render(res)
	assert.Contains(t, out, "Contextual review unavailable. This is a rules-only report.")
}

func TestRenderEmptyBuckets(t *testing.T) {
	res := sampleResult()
	res.Report = &domain.ValidationReport{
		Passed: []string{"a", "b", "c"},
	}
	res.Verdict = domain.DeriveVerdict(res.Report)

	out := Render(res)
	assert.Contains(t, out, "Verdict:   PASSED")
	assert.Contains(t, out, "Critical errors (0):")
	assert.Contains(t, out, "Warnings (0):")
}

func TestArtifactName(t *testing.T) {
	res := sampleResult()
	assert.Equal(t, "customs-audit-chile-20260829T143000Z.txt", ArtifactName(res))

	res.Profile.Country = "United States"
	assert.Equal(t, "customs-audit-united-states-20260829T143000Z.txt", ArtifactName(res))
}
