package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a document could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a specification validation failure.
	ErrValidation = errors.New("validation error")

	// ErrExtraction indicates a model response could not be parsed.
	ErrExtraction = errors.New("extraction error")

	// ErrTransport indicates the model could not be invoked.
	ErrTransport = errors.New("transport error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to decode a document as JSON or YAML.
type ParseError struct {
	// Format is the format the decoder attempted ("json" or "yaml")
	Format string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Format != "" {
		msg += " (" + e.Format + ")"
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ValidationError represents an OpenAPI specification violation reported by
// a validation engine.
type ValidationError struct {
	// Engine names the validation engine that reported the violation
	Engine string
	// Findings holds one human-readable entry per violation, when the engine
	// reports them individually
	Findings []string
	// Message describes the failure when there are no individual findings
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Engine != "" {
		msg += " (" + e.Engine + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Findings) > 0 {
		msg += ": " + strings.Join(e.Findings, "; ")
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ExtractionError represents a model response that could not be turned into
// a structured correction.
type ExtractionError struct {
	// Stage is the extraction stage that failed
	// Common values: "literal", "salvage", "shape"
	Stage string
	// Message provides additional context
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExtractionError) Error() string {
	msg := "extraction error"
	if e.Stage != "" {
		msg += " at " + e.Stage + " stage"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// TransportError represents a failed model invocation.
type TransportError struct {
	// Endpoint is the model endpoint that was called (may be empty)
	Endpoint string
	// StatusCode is the HTTP status returned, or 0 when no response arrived
	StatusCode int
	// Attempts is the number of invocations made before giving up
	Attempts int
	// Retryable reports whether another attempt could succeed
	Retryable bool
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *TransportError) Error() string {
	msg := "transport error"
	if e.Endpoint != "" {
		msg += " from " + e.Endpoint
	}
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
