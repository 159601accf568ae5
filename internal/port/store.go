package port

// AuditWriter persists compliance audit-trail records. Implementations must
// be safe for concurrent use; callers fire writes from request goroutines.
type AuditWriter interface {
	WriteAudit(action, resource, document, details, ip, userAgent string) error
}
