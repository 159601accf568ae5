// Package report renders an audit result into the downloadable text artifact.
// Rendering is a pure serialization: identical input yields byte-identical
// output, which keeps the artifact golden-file testable.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

const divider = "=================================================="

// Render serializes the unified audit result as a plain-text UTF-8 report:
// header, rule section (counts before itemized lists), narrative verbatim.
func Render(res *domain.AuditResult) string {
	var b strings.Builder

	b.WriteString(divider + "\n")
	b.WriteString(" CUSTOMS AUDIT REPORT\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", res.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Country:   %s (currency %s)\n", res.Profile.Country, res.Profile.Currency)
	fmt.Fprintf(&b, "Document:  %s\n", res.DocumentName)
	fmt.Fprintf(&b, "Verdict:   %s\n", verdictLine(res.Verdict))

	b.WriteString("\n--- RULE CHECKS ---\n")
	writeBucket(&b, "Critical errors", res.Report.CriticalErrors)
	writeBucket(&b, "Warnings", res.Report.Warnings)
	writeBucket(&b, "Passed checks", res.Report.Passed)

	b.WriteString("\n--- CONTEXTUAL REVIEW ---\n\n")
	if res.ReviewUnavailable {
		b.WriteString("Contextual review unavailable. This is a rules-only report.\n")
	} else {
		b.WriteString(res.Narrative)
		if !strings.HasSuffix(res.Narrative, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ArtifactName returns the timestamped, country-stamped download filename.
func ArtifactName(res *domain.AuditResult) string {
	country := strings.ToLower(strings.ReplaceAll(res.Profile.Country, " ", "-"))
	return fmt.Sprintf("customs-audit-%s-%s.txt", country, res.CreatedAt.UTC().Format("20060102T150405Z"))
}

func verdictLine(v domain.Verdict) string {
	switch v.State {
	case domain.VerdictFailed:
		return fmt.Sprintf("FAILED (%d critical, %d warning)", v.CriticalCount, v.WarningCount)
	case domain.VerdictNeedsReview:
		return fmt.Sprintf("NEEDS REVIEW (%d warning)", v.WarningCount)
	default:
		return "PASSED"
	}
}

func writeBucket(b *strings.Builder, title string, messages []string) {
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(messages))
	for i, msg := range messages {
		fmt.Fprintf(b, "  %d. %s\n", i+1, msg)
	}
}
