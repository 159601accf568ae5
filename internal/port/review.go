package port

import "context"

// ReviewRequest contains everything the contextual reviewer needs.
// DocumentText is the full extracted text; implementations cap it to a
// bounded prefix before submission to respect downstream input limits.
// The rule validators always see the full text.
type ReviewRequest struct {
	DocumentText   string   `json:"document_text"`
	Country        string   `json:"country"`
	TaxIDLabel     string   `json:"tax_id_label"`
	CriticalErrors []string `json:"critical_errors"`
	Warnings       []string `json:"warnings"`
}

// ContextReviewer delegates the free-form compliance review to an external
// language model. The reply is stored verbatim: the core never parses its
// structure, and any deviation from the requested layout passes through
// unchanged.
type ContextReviewer interface {
	Review(ctx context.Context, req ReviewRequest) (string, error)

	// ReviewStream delivers the same narrative token-by-token as the model
	// produces it. The channel is closed when the reply is complete or the
	// context is cancelled.
	ReviewStream(ctx context.Context, req ReviewRequest) (<-chan string, error)
}
