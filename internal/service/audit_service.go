package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/rules"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
)

// AuditService orchestrates rule validation and the delegated contextual
// review into one unified result.
type AuditService struct {
	catalog       *rules.Catalog
	engine        *port.ValidationEngine
	reviewer      port.ContextReviewer
	reviewTimeout time.Duration
}

// NewAuditService creates a new audit service. reviewTimeout bounds the
// external review call; the rule checks themselves are synchronous and fast.
func NewAuditService(catalog *rules.Catalog, engine *port.ValidationEngine, reviewer port.ContextReviewer, reviewTimeout time.Duration) *AuditService {
	return &AuditService{
		catalog:       catalog,
		engine:        engine,
		reviewer:      reviewer,
		reviewTimeout: reviewTimeout,
	}
}

// Countries returns the supported jurisdiction keys, sorted.
func (s *AuditService) Countries() []string {
	return s.catalog.Countries()
}

// ProfileFor exposes the catalog lookup.
func (s *AuditService) ProfileFor(country string) (domain.CountryProfile, error) {
	return s.catalog.ProfileFor(country)
}

// Validate runs the rule checks only. Fails with port.ErrUnknownCountry or
// port.ErrEmptyDocument before any check runs.
func (s *AuditService) Validate(text, country string) (*domain.ValidationReport, error) {
	profile, err := s.catalog.ProfileFor(country)
	if err != nil {
		return nil, err
	}
	return s.engine.Validate(text, profile)
}

// Audit runs the full pipeline: rule checks, verdict derivation, contextual
// review. A failed or timed-out review never aborts the audit — the result
// degrades to rules-only with the narrative marked unavailable.
func (s *AuditService) Audit(ctx context.Context, documentName, text, country string) (*domain.AuditResult, error) {
	return s.audit(ctx, documentName, text, country, nil)
}

// AuditStream is Audit with the review narrative delivered incrementally:
// onToken is called for every token the model produces, in order, before the
// assembled narrative lands on the result. Degradation rules are unchanged —
// a review that errors or times out mid-stream yields a rules-only result,
// discarding any partial narrative.
func (s *AuditService) AuditStream(ctx context.Context, documentName, text, country string, onToken func(token string)) (*domain.AuditResult, error) {
	return s.audit(ctx, documentName, text, country, onToken)
}

func (s *AuditService) audit(ctx context.Context, documentName, text, country string, onToken func(token string)) (*domain.AuditResult, error) {
	profile, err := s.catalog.ProfileFor(country)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.Validate(text, profile)
	if err != nil {
		return nil, err
	}
	verdict := domain.DeriveVerdict(report)

	result := &domain.AuditResult{
		ID:           uuid.New().String(),
		DocumentName: documentName,
		Profile:      profile,
		Report:       report,
		Verdict:      verdict,
		CreatedAt:    time.Now().UTC(),
	}

	reviewCtx, cancel := context.WithTimeout(ctx, s.reviewTimeout)
	defer cancel()

	req := port.ReviewRequest{
		DocumentText:   text,
		Country:        profile.Country,
		TaxIDLabel:     profile.TaxIDLabel,
		CriticalErrors: report.CriticalErrors,
		Warnings:       report.Warnings,
	}

	var narrative string
	var reviewErr error
	if onToken != nil {
		narrative, reviewErr = s.streamReview(reviewCtx, req, onToken)
	} else {
		narrative, reviewErr = s.reviewer.Review(reviewCtx, req)
	}
	if reviewErr != nil {
		slog.Warn("contextual review unavailable, returning rules-only result",
			"audit_id", result.ID,
			"country", country,
			"error", fmt.Errorf("%w: %v", port.ErrReviewUnavailable, reviewErr),
		)
		result.ReviewUnavailable = true
	} else {
		result.Narrative = narrative
	}

	slog.Info("audit complete",
		"audit_id", result.ID,
		"document", documentName,
		"country", country,
		"verdict", result.Verdict.State,
		"critical", result.Verdict.CriticalCount,
		"warnings", result.Verdict.WarningCount,
		"review_unavailable", result.ReviewUnavailable,
	)
	return result, nil
}

// streamReview consumes the token channel, forwarding each token and
// assembling the full narrative. Cancellation mid-stream counts as a failed
// review; the partial narrative is discarded.
func (s *AuditService) streamReview(ctx context.Context, req port.ReviewRequest, onToken func(token string)) (string, error) {
	tokens, err := s.reviewer.ReviewStream(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for token := range tokens {
		onToken(token)
		b.WriteString(token)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return b.String(), nil
}
