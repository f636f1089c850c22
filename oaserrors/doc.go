// Package oaserrors provides structured error types for the oasmend library.
//
// Import path: github.com/erraggy/oasmend/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between different categories of errors and implement
// appropriate recovery strategies.
//
// # Error Types
//
//   - [ParseError]: the document could not be decoded as JSON or YAML
//   - [ValidationError]: the document decoded but violates the OpenAPI schema
//   - [ExtractionError]: a model response could not be parsed into a correction
//   - [TransportError]: the model endpoint could not be reached or answered badly
//   - [ConfigError]: invalid configuration or input options
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrValidation]: Matches any [ValidationError]
//   - [ErrExtraction]: Matches any [ExtractionError]
//   - [ErrTransport]: Matches any [TransportError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Where errors surface
//
// Parse and validation errors never escape the checker package as Go errors;
// they are reported as entries in a checker.Result. Extraction errors are
// visible only through extractor.TryExtract; extractor.Extract absorbs them
// into a degraded record. Transport errors propagate out of pipeline.Run.
//
// # Usage Examples
//
//	result, err := p.Run(ctx, spec)
//	var tErr *oaserrors.TransportError
//	if errors.As(err, &tErr) {
//	    fmt.Printf("model unavailable after %d attempts (status %d)\n", tErr.Attempts, tErr.StatusCode)
//	}
//
//	if errors.Is(err, oaserrors.ErrConfig) {
//	    // Bad option or missing credentials
//	}
package oaserrors
