package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

const defaultMaxDocumentChars = 12000

// ContextualReviewer implements port.ContextReviewer on top of an LLM
// backend. It sends a bounded prefix of the document plus the rule findings
// and stores whatever the model replies, verbatim.
type ContextualReviewer struct {
	ai       port.AIProvider
	maxChars int
}

// NewContextualReviewer creates a reviewer. maxChars caps the document text
// submitted to the model; zero or negative selects the default bound.
func NewContextualReviewer(ai port.AIProvider, maxChars int) *ContextualReviewer {
	if maxChars <= 0 {
		maxChars = defaultMaxDocumentChars
	}
	return &ContextualReviewer{ai: ai, maxChars: maxChars}
}

const reviewTask = "Perform the contextual customs compliance review of this invoice."

func (r *ContextualReviewer) Review(ctx context.Context, req port.ReviewRequest) (string, error) {
	systemPrompt, chunks := r.buildPrompts(req)

	reply, err := r.ai.Chat(ctx, systemPrompt, reviewTask, chunks)
	if err != nil {
		return "", fmt.Errorf("contextual review: %w", err)
	}
	return reply, nil
}

// ReviewStream forwards the model's reply token-by-token. Same prompts as
// Review; only the transport differs.
func (r *ContextualReviewer) ReviewStream(ctx context.Context, req port.ReviewRequest) (<-chan string, error) {
	systemPrompt, chunks := r.buildPrompts(req)

	tokens, err := r.ai.ChatStream(ctx, systemPrompt, reviewTask, chunks)
	if err != nil {
		return nil, fmt.Errorf("contextual review: %w", err)
	}
	return tokens, nil
}

func (r *ContextualReviewer) buildPrompts(req port.ReviewRequest) (string, []string) {
	systemPrompt := fmt.Sprintf(`You are a strict customs compliance auditor reviewing a commercial trade invoice destined for %s.

Deterministic rule checks have already run; their findings are provided as context. Your job is the contextual review the rules cannot do:
1. Missing or suspicious tax identifiers (%s)
2. Missing or contradictory Incoterms
3. Vague or under-specified goods descriptions
4. Values, quantities, or currencies that look inconsistent

Structure your reply exactly as:

## High Priority Issues
## Medium Priority Issues
## Low Priority Issues
## Confidence Score
A single line "Confidence: X/10" with a short justification.

Reference the invoice text specifically. If a section has no issues, say so explicitly.`, req.Country, req.TaxIDLabel)

	chunks := []string{
		fmt.Sprintf("Rule check findings:\nCritical errors:\n%s\nWarnings:\n%s",
			formatFindings(req.CriticalErrors), formatFindings(req.Warnings)),
		fmt.Sprintf("Invoice text (may be truncated):\n%s", truncate(req.DocumentText, r.maxChars)),
	}

	return systemPrompt, chunks
}

func formatFindings(findings []string) string {
	if len(findings) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for _, f := range findings {
		b.WriteString("  - ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate cuts s to at most maxLen bytes without splitting a rune, so the
// prompt never carries invalid UTF-8.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
