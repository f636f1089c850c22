// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasmend validation and correction as MCP tools over stdio.
package mcpserver

import (
	"context"
	"net/http"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasmend"
	"github.com/erraggy/oasmend/internal/config"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
)

const serverInstructions = `oasmend MCP server: validates OpenAPI specs and asks a language model to correct the invalid ones.

Tools:
- validate: check a spec and list its errors. Never calls a model.
- correct: validate, and when invalid, return a corrected YAML and JSON document with one explanation per change.
- generate: write a new OpenAPI 3.0 document from a plain-language description.

Model: when OASMEND_API_KEY (or GROQ_API_KEY / OPENAI_API_KEY) is set, correct and generate call the configured chat-completions endpoint (OASMEND_BASE_URL, OASMEND_MODEL). Otherwise they ask this client for a completion through MCP sampling.

Configuration: set OASMEND_* environment variables in your MCP client config.
- OASMEND_ENGINE (default: oastools): validation engine, oastools or kin-openapi
- OASMEND_STRICT (default: false): strict validation by default
- OASMEND_TIMEOUT (default: 60s) and OASMEND_ATTEMPTS (default: 3): per-call model timeout and attempts
- OASMEND_MAX_INLINE_SIZE (default: 10MiB): cap on inline spec content
- OASMEND_CACHE_ENABLED (default: true) and OASMEND_CACHE_TTL (default: 15m): validation verdict cache`

const (
	defaultErrorLimit = 100
	maxErrorLimit     = 1000
)

// toolServer carries the state shared by tool handlers.
type toolServer struct {
	cfg    *config.Config
	logger logging.Logger
	// model answers correction and generation prompts; nil selects MCP
	// sampling through the calling session.
	model llm.Model
	// cache is nil when caching is disabled.
	cache *verdictCache
	fetch *http.Client
}

func newToolServer(cfg *config.Config, logger logging.Logger, model llm.Model) *toolServer {
	s := &toolServer{
		cfg:    cfg,
		logger: logging.OrNop(logger),
		model:  model,
		fetch:  &http.Client{Timeout: fetchTimeout},
	}
	if !cfg.AllowPrivateIPs {
		s.fetch = newSafeHTTPClient(fetchTimeout)
	}
	if cfg.CacheEnabled {
		s.cache = newVerdictCache(cfg.CacheMaxSize)
	}
	return s
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	var model llm.Model
	if cfg.HasAPIKey() {
		model = cfg.Client()
	}
	s := newToolServer(cfg, logger, model)
	if s.cache != nil {
		s.cache.startSweeper(ctx, cfg.CacheSweepInterval)
	}
	s.logger.Info("starting MCP server", "engine", cfg.Engine, "sampling", model == nil)
	return s.newServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *toolServer) newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasmend", Version: oasmend.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	s.registerTools(server)
	return server
}

func (s *toolServer) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate an OpenAPI or Swagger document. Returns valid=true with no errors, or the list of validation errors. A document that cannot be decoded as JSON or YAML yields a single 'Parsing error: ...' entry. Never calls a model. Use offset/limit to paginate long error lists.",
	}, s.handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "correct",
		Description: "Validate an OpenAPI or Swagger document and, when it is invalid, ask a language model to correct it. Returns the verdict, the validation errors, and the corrected document as YAML and JSON strings with one explanation per change. A valid document is returned without calling the model. degraded=true means the model answer could not be parsed; its text is in corrected.raw_response.",
	}, s.handleCorrect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Generate a complete OpenAPI 3.0 document from a plain-language API description. Returns the document as YAML and JSON strings plus the model's design notes. The result is not validated; pass it to validate or correct.",
	}, s.handleGenerate)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to defaultErrorLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = defaultErrorLimit
	}
	if limit > maxErrorLimit {
		limit = maxErrorLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
