// Package checker decides whether a text is a valid OpenAPI Specification
// document.
//
// Validation happens in two steps. The text is first decoded: trimmed text
// that starts with '{' is decoded as JSON, anything else as YAML. A decode
// failure is reported as the single error "Parsing error: <message>" and the
// second step is skipped. Otherwise the document is handed to an [Engine],
// which reports zero or more findings.
//
// Two engines are provided. [OASTools] (the default) supports OpenAPI 2.0
// through 3.2; [KinOpenAPI] supports OpenAPI 3.x.
//
// # Quick Start
//
//	result := checker.Validate(specText)
//	fmt.Println(result.Valid, result.Errors)
//
// With options:
//
//	c, err := checker.New(
//		checker.WithEngine(checker.KinOpenAPI{}),
//		checker.WithLogger(logging.NewSlogAdapter(slog.Default())),
//	)
//	result := c.Validate(ctx, specText)
package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/erraggy/oasmend/logging"
	"github.com/erraggy/oasmend/oaserrors"
)

// ParsingErrorPrefix starts the single error entry reported for a document
// that could not be decoded.
const ParsingErrorPrefix = "Parsing error: "

// Result is the verdict for one document.
type Result struct {
	// Valid is true iff Errors is empty
	Valid bool `json:"valid" yaml:"valid"`
	// Errors holds one human-readable entry per finding, in engine order
	Errors []string `json:"errors" yaml:"errors"`
}

// Checker validates documents with a configured engine. A Checker is
// immutable and safe for concurrent use.
type Checker struct {
	engine Engine
	logger logging.Logger
}

// Option configures a Checker.
type Option func(*Checker) error

// WithEngine sets the validation engine. Default: OASTools{}.
func WithEngine(e Engine) Option {
	return func(c *Checker) error {
		if e == nil {
			return &oaserrors.ConfigError{Option: "engine", Message: "engine cannot be nil"}
		}
		c.engine = e
		return nil
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l logging.Logger) Option {
	return func(c *Checker) error {
		c.logger = logging.OrNop(l)
		return nil
	}
}

// New creates a Checker.
func New(opts ...Option) (*Checker, error) {
	c := &Checker{engine: OASTools{}, logger: logging.NopLogger{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("checker: %w", err)
		}
	}
	return c, nil
}

var defaultChecker = &Checker{engine: OASTools{}, logger: logging.NopLogger{}}

// Validate validates text with the default engine.
func Validate(text string) *Result {
	return defaultChecker.Validate(context.Background(), text)
}

// Engine returns the engine in use.
func (c *Checker) Engine() Engine {
	return c.engine
}

// Validate decodes and validates text. It never returns nil and never
// panics; every failure is reported in Result.Errors.
func (c *Checker) Validate(ctx context.Context, text string) *Result {
	doc, err := Decode(text)
	if err != nil {
		c.logger.Debug("document could not be decoded", "error", err)
		return &Result{Valid: false, Errors: []string{ParsingErrorPrefix + parseMessage(err)}}
	}

	c.logger.Debug("validating document", "format", string(doc.Format), "engine", c.engine.Name(), "bytes", len(text))
	if err := c.check(ctx, doc); err != nil {
		entries := findings(err)
		c.logger.Debug("document is invalid", "engine", c.engine.Name(), "errors", len(entries))
		return &Result{Valid: false, Errors: entries}
	}
	return &Result{Valid: true, Errors: []string{}}
}

// check runs the engine, converting a panic into an error.
func (c *Checker) check(ctx context.Context, doc *Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("validation engine panicked", "engine", c.engine.Name(), "panic", r)
			err = fmt.Errorf("%s engine failed: %v", c.engine.Name(), r)
		}
	}()
	return c.engine.Check(ctx, doc)
}

// findings flattens an engine error into error entries. The result is never
// empty.
func findings(err error) []string {
	var verr *oaserrors.ValidationError
	if errors.As(err, &verr) && len(verr.Findings) > 0 {
		return append([]string(nil), verr.Findings...)
	}
	return []string{err.Error()}
}
