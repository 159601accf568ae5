package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/report"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/service"
)

// Server implements the Model Context Protocol (MCP) server.
// It exposes tools for external AI agents to run invoice audits.
type Server struct {
	auditService *service.AuditService
	trail        port.AuditWriter
	port         string
}

// NewServer creates a new MCP server. trail may be nil, which disables the
// per-call compliance records.
func NewServer(auditService *service.AuditService, trail port.AuditWriter, port string) *Server {
	return &Server{
		auditService: auditService,
		trail:        trail,
		port:         port,
	}
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Start begins the MCP server on the configured port.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/mcp/sse", s.handleSSE)

	slog.Info("MCP server starting", "port", s.port)
	return http.ListenAndServe(":"+s.port, mux)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, -32700, "parse error")
		return
	}

	var result interface{}
	var err error

	switch req.Method {
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, err = s.callTool(r.Context(), req.Params, r.RemoteAddr)
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]string{
				"name":    "customs-watchdog",
				"version": "1.0.0",
			},
			"capabilities": map[string]interface{}{
				"tools": map[string]bool{"listChanged": false},
			},
		}
	default:
		writeError(w, req.ID, -32601, "method not found")
		return
	}

	if err != nil {
		writeError(w, req.ID, -32603, err.Error())
		return
	}

	writeResult(w, req.ID, result)
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send initial endpoint message
	fmt.Fprintf(w, "event: endpoint\ndata: /mcp\n\n")
	w.(http.Flusher).Flush()

	// Keep connection alive
	<-r.Context().Done()
}

func (s *Server) listTools() map[string]interface{} {
	tools := []Tool{
		{
			Name:        "audit_invoice",
			Description: "Audit extracted invoice text for customs compliance and return the plain-text report",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"text": {"type": "string", "description": "Extracted invoice text"},
					"country": {"type": "string", "description": "Destination country key, e.g. Chile or Brazil"},
					"document_name": {"type": "string", "description": "Source document name for the report header"}
				},
				"required": ["text", "country"]
			}`),
		},
		{
			Name:        "list_countries",
			Description: "List supported jurisdictions",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		{
			Name:        "get_country_profile",
			Description: "Return the rule profile for one jurisdiction",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"country": {"type": "string", "description": "Country key"}
				},
				"required": ["country"]
			}`),
		},
	}
	return map[string]interface{}{"tools": tools}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage, remoteAddr string) (interface{}, error) {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	s.writeTrail(req.Name, remoteAddr)

	switch req.Name {
	case "audit_invoice":
		var args struct {
			Text         string `json:"text"`
			Country      string `json:"country"`
			DocumentName string `json:"document_name"`
		}
		json.Unmarshal(req.Arguments, &args)
		if args.DocumentName == "" {
			args.DocumentName = "mcp-submission"
		}

		result, err := s.auditService.Audit(ctx, args.DocumentName, args.Text, args.Country)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": report.Render(result)},
			},
			"verdict": result.Verdict,
		}, nil

	case "list_countries":
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": fmt.Sprintf("Supported countries: %s", strings.Join(s.auditService.Countries(), ", "))},
			},
		}, nil

	case "get_country_profile":
		var args struct {
			Country string `json:"country"`
		}
		json.Unmarshal(req.Arguments, &args)

		profile, err := s.auditService.ProfileFor(args.Country)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": fmt.Sprintf("%s — tax ID: %s (%s), currency: %s, required fields: %s",
					profile.Country, profile.TaxIDLabel, profile.TaxIDPattern.String(), profile.Currency,
					strings.Join(profile.RequiredFields, ", "))},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", req.Name)
	}
}

// writeTrail records one tool invocation in the compliance trail.
func (s *Server) writeTrail(tool, remoteAddr string) {
	if s.trail == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{"tool": tool})
	if err := s.trail.WriteAudit(domain.AuditActionMCPCall, "mcp", tool, string(details), remoteAddr, "mcp-client"); err != nil {
		slog.Error("failed to write audit trail", "tool", tool, "error", err)
	}
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
