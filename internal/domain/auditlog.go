package domain

import "time"

// AuditLog records every significant action in the system for compliance.
type AuditLog struct {
	ID        string    `json:"id"         db:"id"`
	Action    string    `json:"action"     db:"action"`
	Resource  string    `json:"resource"   db:"resource"`
	Document  string    `json:"document"   db:"document"`
	Details   string    `json:"details"    db:"details"` // JSON blob
	IP        string    `json:"ip"         db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Audit action constants.
const (
	AuditActionRequest     = "http_request"
	AuditActionAuditRun    = "audit_run"
	AuditActionAuditUpload = "audit_upload"
	AuditActionMCPCall     = "mcp_call"
)
