package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
)

// PostgresStore persists the compliance audit trail. Audit results themselves
// are never written here; only the record of who asked for what.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// WriteAudit implements port.AuditWriter.
func (s *PostgresStore) WriteAudit(action, resource, document, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (action, resource, document, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4::jsonb, $5, $6)`
	_, err := s.db.ExecContext(context.Background(), query,
		action, resource, document, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, action, resource, document, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.Action, &l.Resource, &l.Document,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
