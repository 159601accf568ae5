package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/domain"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/report"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/service"
)

// Background job stages for an uploaded document.
var uploadStages = []string{"extract", "audit", "render"}

// AuditHandler handles invoice audit endpoints.
type AuditHandler struct {
	auditService *service.AuditService
	extractor    port.TextExtractor
	tracker      *JobTracker
	trail        port.AuditWriter
}

// NewAuditHandler creates a new audit handler. trail may be nil, which
// disables the per-audit compliance records.
func NewAuditHandler(auditService *service.AuditService, extractor port.TextExtractor, tracker *JobTracker, trail port.AuditWriter) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		extractor:    extractor,
		tracker:      tracker,
		trail:        trail,
	}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audits := router.Group("/audits")
	audits.Post("/run", h.Run)
	audits.Post("/upload", h.Upload)
	audits.Get("/:id", h.Get)
	audits.Get("/:id/report", h.DownloadReport)
}

// Run audits already-extracted text synchronously and returns the result.
func (h *AuditHandler) Run(c fiber.Ctx) error {
	var body struct {
		Country      string `json:"country"`
		DocumentName string `json:"document_name"`
		Text         string `json:"text"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.DocumentName == "" {
		body.DocumentName = "pasted-text"
	}

	result, err := h.auditService.Audit(c.Context(), body.DocumentName, body.Text, body.Country)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	artifact := report.Render(result)
	h.tracker.SetResult(result.ID, result, artifact)
	h.writeTrail(domain.AuditActionAuditRun, body.DocumentName, map[string]interface{}{
		"audit_id": result.ID,
		"country":  body.Country,
		"verdict":  result.Verdict.State,
	}, c.IP(), c.Get("User-Agent"))

	return c.JSON(fiber.Map{
		"result":     result,
		"report_url": "/api/v1/audits/" + result.ID + "/report",
	})
}

// Upload accepts a multipart PDF, returns 202 immediately, and audits in the
// background — the LLM review can take a while, so no HTTP connection is held.
func (h *AuditHandler) Upload(c fiber.Ctx) error {
	country := c.FormValue("country")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file upload"})
	}

	// Reject unknown countries before accepting the job.
	if _, err := h.auditService.ProfileFor(country); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open upload: " + err.Error()})
	}

	jobID := uuid.New().String()
	h.tracker.CreateJob(jobID, fileHeader.Filename, country, len(uploadStages))

	// Fiber reuses context objects; capture before the goroutine starts.
	ip := c.IP()
	userAgent := c.Get("User-Agent")

	go func() {
		defer file.Close()
		ctx := context.Background()

		h.tracker.UpdateJob(jobID, "", 0, "running")
		text, err := h.extractor.Extract(file)
		if err != nil {
			slog.Error("extraction failed", "job_id", jobID, "document", fileHeader.Filename, "error", err)
			h.tracker.FailJob(jobID, err.Error())
			return
		}
		h.tracker.UpdateJob(jobID, "extract", 1, "running")

		// The review narrative streams to SSE subscribers as it is produced.
		result, err := h.auditService.AuditStream(ctx, fileHeader.Filename, text, country, func(token string) {
			h.tracker.StreamReviewToken(jobID, token)
		})
		if err != nil {
			slog.Error("audit failed", "job_id", jobID, "document", fileHeader.Filename, "error", err)
			h.tracker.FailJob(jobID, err.Error())
			return
		}
		h.tracker.UpdateJob(jobID, "audit", 2, "running")

		h.tracker.SetResult(jobID, result, report.Render(result))
		h.tracker.UpdateJob(jobID, "render", 3, "complete")
		h.writeTrail(domain.AuditActionAuditUpload, fileHeader.Filename, map[string]interface{}{
			"audit_id": result.ID,
			"job_id":   jobID,
			"country":  country,
			"verdict":  result.Verdict.State,
		}, ip, userAgent)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id":  jobID,
		"stages":  uploadStages,
		"message": "audit started",
	})
}

// Get returns a finished audit result as JSON.
func (h *AuditHandler) Get(c fiber.Ctx) error {
	id := c.Params("id")
	result, _, ok := h.tracker.GetResult(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": port.ErrAuditNotFound.Error()})
	}
	return c.JSON(fiber.Map{
		"result":     result,
		"report_url": "/api/v1/audits/" + id + "/report",
	})
}

// DownloadReport returns the rendered plain-text artifact.
func (h *AuditHandler) DownloadReport(c fiber.Ctx) error {
	id := c.Params("id")
	result, artifact, ok := h.tracker.GetResult(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": port.ErrAuditNotFound.Error()})
	}

	c.Set("Content-Type", "text/plain; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="`+report.ArtifactName(result)+`"`)
	return c.SendString(artifact)
}

// writeTrail records one finished audit in the compliance trail.
func (h *AuditHandler) writeTrail(action, document string, details map[string]interface{}, ip, userAgent string) {
	if h.trail == nil {
		return
	}
	detailsJSON, _ := json.Marshal(details)
	if err := h.trail.WriteAudit(action, "audits", document, string(detailsJSON), ip, userAgent); err != nil {
		slog.Error("failed to write audit trail", "action", action, "document", document, "error", err)
	}
}

// statusForError maps sentinel errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, port.ErrUnknownCountry):
		return fiber.StatusBadRequest
	case errors.Is(err, port.ErrEmptyDocument):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, port.ErrExtractionFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, port.ErrAuditNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
