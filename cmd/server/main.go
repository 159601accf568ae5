package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/extract"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/review"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/rules"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/handler"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/mcp"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/middleware"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/port"
	"github.com/arturoeanton/go-invoice-auditor-ollama/internal/service"
	"github.com/arturoeanton/go-invoice-auditor-ollama/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Customs Watchdog",
		"port", cfg.Port,
		"ollama_chat", cfg.OllamaChatURL,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Database (compliance trail) ──────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	// ── Rule Catalog ─────────────────────────────────────────────────────
	catalog, err := rules.NewCatalog()
	if err != nil {
		slog.Error("failed to load rule catalog", "error", err)
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────
	ollamaAI := ai.NewOllamaProvider(ai.OllamaConfig{
		BaseURL: cfg.OllamaChatURL,
		Model:   cfg.OllamaChatModel,
		Token:   cfg.OllamaChatToken,
	})
	reviewer := review.NewContextualReviewer(ollamaAI, cfg.ReviewMaxChars)
	pdfExtractor := extract.NewPDFExtractor()

	// ── Validation Engine (Strategy Pattern) ─────────────────────────────
	engine := port.NewValidationEngine(
		rules.NewTaxIDValidator(),
		rules.NewIncotermValidator(),
		rules.NewHSCodeValidator(),
	)

	// ── Services ─────────────────────────────────────────────────────────
	auditService := service.NewAuditService(
		catalog,
		engine,
		reviewer,
		time.Duration(cfg.ReviewTimeoutSeconds)*time.Second,
	)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	jobTracker := handler.NewJobTracker()

	auditHandler := handler.NewAuditHandler(auditService, pdfExtractor, jobTracker, pgStore)
	auditHandler.Register(api)

	jobsHandler := handler.NewJobsHandler(jobTracker)
	jobsHandler.Register(api)

	countriesHandler := handler.NewCountriesHandler(auditService)
	countriesHandler.Register(api)

	logsHandler := handler.NewLogsHandler(pgStore)
	logsHandler.Register(api)

	streamHandler := handler.NewStreamHandler(pgStore)
	streamHandler.Register(api)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(auditService, pgStore, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
