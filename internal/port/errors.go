package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrUnknownCountry    = errors.New("unsupported country")
	ErrEmptyDocument     = errors.New("document has no extractable text")
	ErrReviewUnavailable = errors.New("contextual review unavailable")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrAuditNotFound     = errors.New("audit not found")
)
