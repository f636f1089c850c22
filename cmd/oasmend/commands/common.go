// Package commands provides CLI command handlers for oasmend.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmend/internal/cliutil"
	"github.com/erraggy/oasmend/internal/config"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrInvalid is returned when a command completed but the document it
// checked is invalid. Callers exit with status 1 without reporting it again.
var ErrInvalid = errors.New("document is invalid")

// Streams and factories used by the handlers. Tests replace them.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	loadConfig = config.Load
	newModel   = defaultModel
)

// errNoModel is returned by commands that need a model when no API key is set.
var errNoModel = errors.New("no model configured: set OASMEND_API_KEY (or GROQ_API_KEY / OPENAI_API_KEY)")

func defaultModel(cfg *config.Config) (llm.Model, error) {
	if !cfg.HasAPIKey() {
		return nil, errNoModel
	}
	return cfg.Client(), nil
}

// Writef writes formatted output to the writer.
func Writef(w io.Writer, format string, args ...any) {
	cliutil.Writef(w, format, args...)
}

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var out []byte
	var err error

	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		out, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", out)
	return nil
}

// commandLogger builds the diagnostic logger for a command run. Logs always
// go to stderr so stdout stays parseable.
func commandLogger(cfg *config.Config) logging.Logger {
	return logging.NewSlogAdapter(cfg.Logger(stderr))
}

// applyCheckFlags overrides the configured engine and strictness with
// explicitly set command-line values.
func applyCheckFlags(cfg *config.Config, engine string, strict bool) {
	if engine != "" {
		cfg.Engine = engine
	}
	if strict {
		cfg.Strict = true
	}
}

// printFindings writes a numbered error list.
func printFindings(w io.Writer, errs []string) {
	for i, e := range errs {
		Writef(w, "  %d. %s\n", i+1, e)
	}
}

// printExplanations writes the model's change list, if any.
func printExplanations(w io.Writer, explanations []string) {
	if len(explanations) == 0 {
		return
	}
	Writef(w, "\nChanges (%d):\n", len(explanations))
	for _, e := range explanations {
		Writef(w, "  - %s\n", e)
	}
}
