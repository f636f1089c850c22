// Package config loads oasmend settings from OASMEND_* environment variables.
//
// Settings are read once at process start. An invalid value logs a warning
// and falls back to its default; loading never fails.
package config

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/oasmend/checker"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
	"github.com/erraggy/oasmend/pipeline"
)

// DefaultMaxInlineSize caps inline spec content accepted by the MCP server.
const DefaultMaxInlineSize = 10 * 1024 * 1024

// apiKeyVars are consulted in order; the first non-empty value wins.
var apiKeyVars = []string{"OASMEND_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"}

// Config holds every environment-configurable setting.
type Config struct {
	// Model endpoint.
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// Invocation policy.
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration

	// Validation.
	Engine string
	Strict bool

	// Logging.
	LogLevel  slog.Level
	LogFormat string

	// MCP server.
	MaxInlineSize      int64
	AllowPrivateIPs    bool
	CacheEnabled       bool
	CacheMaxSize       int
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		APIKey:        envFirst(apiKeyVars...),
		BaseURL:       envString("OASMEND_BASE_URL", llm.DefaultBaseURL),
		Model:         envString("OASMEND_MODEL", llm.DefaultModel),
		MaxTokens:     envInt("OASMEND_MAX_TOKENS", llm.DefaultMaxTokens),
		Temperature:   envTemperature("OASMEND_TEMPERATURE", 0),
		Timeout:       envDuration("OASMEND_TIMEOUT", pipeline.DefaultTimeout),
		Attempts:      envInt("OASMEND_ATTEMPTS", pipeline.DefaultAttempts),
		Backoff:       envDuration("OASMEND_BACKOFF", pipeline.DefaultBackoff),
		Engine:        envEngine("OASMEND_ENGINE"),
		Strict:        envBool("OASMEND_STRICT", false),
		LogLevel:      envLevel("OASMEND_LOG_LEVEL", slog.LevelWarn),
		LogFormat:     envFormat("OASMEND_LOG_FORMAT"),
		MaxInlineSize: envInt64("OASMEND_MAX_INLINE_SIZE", DefaultMaxInlineSize),

		AllowPrivateIPs:    envBool("OASMEND_ALLOW_PRIVATE_IPS", false),
		CacheEnabled:       envBool("OASMEND_CACHE_ENABLED", true),
		CacheMaxSize:       envInt("OASMEND_CACHE_MAX_SIZE", 64),
		CacheTTL:           envDuration("OASMEND_CACHE_TTL", 15*time.Minute),
		CacheSweepInterval: envDuration("OASMEND_CACHE_SWEEP_INTERVAL", 60*time.Second),
	}
}

// HasAPIKey reports whether a chat-completions API key is configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// Client returns a chat-completions client for the configured endpoint.
func (c *Config) Client() *llm.Client {
	return &llm.Client{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

// Logger returns a slog logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return logging.New(w, c.LogLevel, c.LogFormat)
}

// Checker returns a checker using the configured engine.
func (c *Config) Checker(logger logging.Logger) (*checker.Checker, error) {
	engine, err := checker.EngineByName(c.Engine, c.Strict)
	if err != nil {
		return nil, err
	}
	return checker.New(checker.WithEngine(engine), checker.WithLogger(logger))
}

// PipelineOptions returns the pipeline options implied by the configuration.
func (c *Config) PipelineOptions(logger logging.Logger) ([]pipeline.Option, error) {
	chk, err := c.Checker(logger)
	if err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithChecker(chk),
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(c.Timeout),
		pipeline.WithRetry(c.Attempts, c.Backoff),
	}, nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envFirst(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

// envTemperature accepts values in [0, 2], the range chat-completions APIs allow.
func envTemperature(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 2 {
		slog.Warn("invalid temperature env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}

func envEngine(key string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return checker.EngineOASTools
	}
	if !slices.Contains(checker.EngineNames, v) {
		slog.Warn("invalid engine env var, using default", "key", key, "value", v, "default", checker.EngineOASTools) //nolint:gosec // G706: values are structured log fields, not format strings
		return checker.EngineOASTools
	}
	return v
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	level, err := logging.ParseLevel(v)
	if err != nil {
		slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return level
}

func envFormat(key string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return "text"
	case "text", "json":
		return v
	default:
		slog.Warn("invalid log format env var, using default", "key", key, "value", v, "default", "text") //nolint:gosec // G706: values are structured log fields, not format strings
		return "text"
	}
}
