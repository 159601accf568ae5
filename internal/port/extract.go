package port

import "io"

// TextExtractor abstracts the document-to-text collaborator. Producing plain
// text from an uploaded file is entirely its responsibility; extraction
// failures are propagated to the caller unchanged.
type TextExtractor interface {
	// Extract returns the plain text content of the document.
	Extract(r io.Reader) (string, error)
}
