package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/rules"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/service"
)

type stubReviewer struct{}

func (stubReviewer) Review(ctx context.Context, req port.ReviewRequest) (string, error) {
	return "reviewed", nil
}

func (stubReviewer) ReviewStream(ctx context.Context, req port.ReviewRequest) (<-chan string, error) {
	ch := make(chan string, 1)
	ch <- "reviewed"
	close(ch)
	return ch, nil
}

// trailRecorder captures compliance-trail writes in memory.
type trailRecorder struct {
	actions   []string
	resources []string
	documents []string
}

func (r *trailRecorder) WriteAudit(action, resource, document, details, ip, userAgent string) error {
	r.actions = append(r.actions, action)
	r.resources = append(r.resources, resource)
	r.documents = append(r.documents, document)
	return nil
}

func newTestServer(t *testing.T) (*Server, *trailRecorder) {
	t.Helper()
	catalog, err := rules.NewCatalog()
	require.NoError(t, err)
	engine := port.NewValidationEngine(
		rules.NewTaxIDValidator(),
		rules.NewIncotermValidator(),
		rules.NewHSCodeValidator(),
	)
	svc := service.NewAuditService(catalog, engine, stubReviewer{}, time.Second)
	trail := &trailRecorder{}
	return NewServer(svc, trail, "0"), trail
}

func TestCallToolRecordsComplianceTrail(t *testing.T) {
	srv, trail := newTestServer(t)

	params, err := json.Marshal(map[string]interface{}{
		"name":      "list_countries",
		"arguments": map[string]string{},
	})
	require.NoError(t, err)

	_, err = srv.callTool(context.Background(), params, "203.0.113.9:4242")
	require.NoError(t, err)

	require.Len(t, trail.actions, 1)
	assert.Equal(t, domain.AuditActionMCPCall, trail.actions[0])
	assert.Equal(t, "mcp", trail.resources[0])
	assert.Equal(t, "list_countries", trail.documents[0])
}

func TestCallToolAuditInvoice(t *testing.T) {
	srv, trail := newTestServer(t)

	params, err := json.Marshal(map[string]interface{}{
		"name": "audit_invoice",
		"arguments": map[string]string{
			"text":    "Exporter RUT 12.345.678-5. Terms: FOB Valparaiso. Goods: laptops, HS 8471.30.0000.",
			"country": "Chile",
		},
	})
	require.NoError(t, err)

	result, err := srv.callTool(context.Background(), params, "203.0.113.9:4242")
	require.NoError(t, err)

	out, ok := result.(map[string]interface{})
	require.True(t, ok)
	verdict, ok := out["verdict"].(domain.Verdict)
	require.True(t, ok)
	assert.Equal(t, domain.VerdictPassed, verdict.State)

	require.Len(t, trail.actions, 1)
	assert.Equal(t, domain.AuditActionMCPCall, trail.actions[0])
	assert.Equal(t, "audit_invoice", trail.documents[0])
}
