// Package pipeline validates OpenAPI documents and asks a model to correct
// the ones that fail.
//
// A Run validates first. A valid document is returned as is and the model is
// never called. An invalid document is embedded, with its error list, in a
// correction prompt; the model's answer is turned into a structured
// correction by the extractor package, which never fails. The only error a
// Run can return is a model transport failure that persisted through every
// retry, or cancellation of the caller's context.
//
// # Quick Start
//
//	p, err := pipeline.New(&llm.Client{APIKey: key})
//	if err != nil {
//		return err
//	}
//	result, err := p.Run(ctx, specText)
//
// # Timeouts and Retries
//
// Each model invocation is bounded by WithTimeout (default 60s). Failures
// marked retryable by the model, and attempts that hit the timeout, are
// retried with exponential backoff as configured by WithRetry (default 3
// attempts starting at 1s). Cancelling ctx stops immediately.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erraggy/oasmend/checker"
	"github.com/erraggy/oasmend/extractor"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
	"github.com/erraggy/oasmend/oaserrors"
)

// Defaults for New.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultAttempts   = 3
	DefaultBackoff    = time.Second
	DefaultMaxBackoff = 30 * time.Second
)

// Result is the outcome of a Run.
type Result struct {
	// Valid is the verdict for the input document
	Valid bool `json:"valid" yaml:"valid"`
	// Errors lists the validation errors; empty iff Valid
	Errors []string `json:"errors" yaml:"errors"`
	// Corrected is the extracted correction; nil iff Valid
	Corrected *extractor.Result `json:"corrected" yaml:"corrected"`
	// Explanations mirrors Corrected.Explanations, or is empty
	Explanations []string `json:"explanations" yaml:"explanations"`
}

// Pipeline runs validation and correction. A Pipeline holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	model      llm.Model
	checker    *checker.Checker
	extractor  *extractor.Extractor
	logger     logging.Logger
	timeout    time.Duration
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
	progress   ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChecker sets the validator. Default: a checker with the oastools engine.
func WithChecker(c *checker.Checker) Option {
	return func(p *Pipeline) error {
		if c == nil {
			return &oaserrors.ConfigError{Option: "checker", Message: "checker cannot be nil"}
		}
		p.checker = c
		return nil
	}
}

// WithExtractor sets the extractor. Default: extractor.New with the
// pipeline's logger.
func WithExtractor(x *extractor.Extractor) Option {
	return func(p *Pipeline) error {
		if x == nil {
			return &oaserrors.ConfigError{Option: "extractor", Message: "extractor cannot be nil"}
		}
		p.extractor = x
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) error {
		p.logger = logging.OrNop(l)
		return nil
	}
}

// WithTimeout bounds each model invocation. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return &oaserrors.ConfigError{Option: "timeout", Value: d, Message: "must be positive"}
		}
		p.timeout = d
		return nil
	}
}

// WithRetry sets the number of invocation attempts and the initial backoff
// between them. The backoff doubles after each failure up to 30s.
// Default: 3 attempts, 1s.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return &oaserrors.ConfigError{Option: "attempts", Value: attempts, Message: "must be at least 1"}
		}
		if backoff < 0 {
			return &oaserrors.ConfigError{Option: "backoff", Value: backoff, Message: "cannot be negative"}
		}
		p.attempts = attempts
		p.backoff = backoff
		return nil
	}
}

// WithProgress registers a callback for progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) error {
		p.progress = fn
		return nil
	}
}

// New creates a Pipeline that corrects documents with model.
func New(model llm.Model, opts ...Option) (*Pipeline, error) {
	if model == nil {
		return nil, fmt.Errorf("pipeline: %w", &oaserrors.ConfigError{Option: "model", Message: "model is required"})
	}

	p := &Pipeline{
		model:      model,
		logger:     logging.NopLogger{},
		timeout:    DefaultTimeout,
		attempts:   DefaultAttempts,
		backoff:    DefaultBackoff,
		maxBackoff: DefaultMaxBackoff,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	if p.checker == nil {
		c, err := checker.New(checker.WithLogger(p.logger))
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.checker = c
	}
	if p.extractor == nil {
		p.extractor = extractor.New(extractor.WithLogger(p.logger))
	}
	return p, nil
}

// Validate validates spec without invoking the model.
func (p *Pipeline) Validate(ctx context.Context, spec string) *checker.Result {
	return p.checker.Validate(ctx, spec)
}

// Run validates spec and, when it is invalid, asks the model for a
// correction.
//
// The returned error is non-nil only when the model could not be invoked:
// it is an *oaserrors.TransportError after all attempts failed, or wraps
// ctx.Err() when ctx was cancelled. A malformed model answer is not an
// error; it yields a degraded Corrected record.
func (p *Pipeline) Run(ctx context.Context, spec string) (*Result, error) {
	verdict := p.checker.Validate(ctx, spec)
	p.emit(Event{Step: StepValidate, Valid: verdict.Valid, Errors: verdict.Errors})

	if verdict.Valid {
		result := &Result{Valid: true, Errors: []string{}, Explanations: []string{}}
		p.emit(Event{Step: StepDone, Valid: true, Errors: result.Errors, Result: result})
		return result, nil
	}

	p.logger.Info("specification is invalid; requesting correction", "errors", len(verdict.Errors))
	resp, err := p.invoke(ctx, CorrectionPrompt(spec, verdict.Errors))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	corrected := p.extractor.Extract(resp)
	result := &Result{
		Valid:        false,
		Errors:       verdict.Errors,
		Corrected:    &corrected,
		Explanations: corrected.Explanations,
	}
	p.emit(Event{Step: StepCorrection, Valid: false, Errors: result.Errors, Result: result})
	p.emit(Event{Step: StepDone, Valid: false, Errors: result.Errors, Result: result})
	return result, nil
}

// Generate asks the model for a new OpenAPI 3.0 document matching
// description. The answer is extracted like a correction and is never
// validated.
func (p *Pipeline) Generate(ctx context.Context, description string) (*extractor.Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("pipeline: %w", &oaserrors.ConfigError{Option: "description", Message: "description is required"})
	}

	resp, err := p.invoke(ctx, GenerationPrompt(description))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	result := p.extractor.Extract(resp)
	return &result, nil
}

func (p *Pipeline) emit(e Event) {
	if p.progress != nil {
		p.progress(e)
	}
}
