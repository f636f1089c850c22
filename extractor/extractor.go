// Package extractor recovers a structured correction from free-form model
// output.
//
// Models are asked to answer with exactly one literal mapping:
//
//	{'yaml': '...', 'json': '...', 'explanations': ['...'], 'raw_response': '...'}
//
// They often do not. Answers arrive wrapped in code fences, preceded by
// prose, followed by commentary, truncated, or with fields of the wrong
// type. The extractor runs a fixed chain of stages, each handling one of
// those failure modes:
//
//  1. unwrap the response envelope and trim whitespace
//  2. strip a surrounding code fence
//  3. parse the text with a restricted literal grammar that cannot execute code
//  4. salvage: parse the span from the first '{' to the last '}'
//  5. fall back to a degraded record that keeps the raw text
//
// A parsed mapping is normalized field by field, so a wrong type in one
// field never discards the others.
//
// [Extract] and [ExtractText] are total: they always return a well-shaped
// [Result] and never panic. [TryExtract] exposes the failure that Extract
// hides, as an *oaserrors.ExtractionError.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/oasmend/internal/literal"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
	"github.com/erraggy/oasmend/oaserrors"
)

// Extraction stages reported in oaserrors.ExtractionError.Stage.
const (
	StageLiteral = "literal"
	StageSalvage = "salvage"
	StageShape   = "shape"
)

// Result is a correction recovered from a model response.
type Result struct {
	// YAML is the corrected document serialized as YAML, or ""
	YAML string `json:"yaml" yaml:"yaml"`
	// JSON is the corrected document serialized as JSON, or ""
	JSON string `json:"json" yaml:"json"`
	// Explanations holds one entry per change; never nil
	Explanations []string `json:"explanations" yaml:"explanations"`
	// RawResponse is the model's own summary, or its unmodified output
	RawResponse string `json:"raw_response" yaml:"raw_response"`
}

// Fallback returns the degraded record for raw.
func Fallback(raw string) Result {
	return Result{Explanations: []string{}, RawResponse: raw}
}

// Degraded reports whether r carries no structured content, meaning callers
// must fall back to RawResponse.
func (r Result) Degraded() bool {
	return r.YAML == "" && r.JSON == "" && len(r.Explanations) == 0
}

// Extractor turns model responses into Results. An Extractor is immutable
// and safe for concurrent use.
type Extractor struct {
	logger logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. Extraction failures are logged at warn level.
func WithLogger(l logging.Logger) Option {
	return func(x *Extractor) {
		x.logger = logging.OrNop(l)
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	x := &Extractor{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

var defaultExtractor = New()

// Extract extracts a Result from resp with a default Extractor.
func Extract(resp llm.Response) Result {
	return defaultExtractor.Extract(resp)
}

// ExtractText extracts a Result from plain text with a default Extractor.
func ExtractText(text string) Result {
	return defaultExtractor.Extract(llm.PlainText(text))
}

// TryExtract is the fallible form of Extract with a default Extractor.
func TryExtract(resp llm.Response) (Result, error) {
	return defaultExtractor.TryExtract(resp)
}

// Extract returns the Result recovered from resp, or Fallback of the
// response text when nothing could be recovered. It never panics.
func (x *Extractor) Extract(resp llm.Response) (result Result) {
	raw := llm.Text(resp)
	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("extractor panicked; returning raw response", "panic", r, "bytes", len(raw))
			result = Fallback(raw)
		}
	}()

	result, err := x.TryExtract(resp)
	if err != nil {
		attrs := []any{"error", err, "bytes", len(raw)}
		var eerr *oaserrors.ExtractionError
		if errors.As(err, &eerr) {
			attrs = append(attrs, "stage", eerr.Stage)
		}
		x.logger.Warn("model response not parseable; returning raw response", attrs...)
		return Fallback(raw)
	}
	return result
}

// TryExtract recovers a Result from resp or reports why it could not.
// Errors are *oaserrors.ExtractionError.
func (x *Extractor) TryExtract(resp llm.Response) (Result, error) {
	raw := llm.Text(resp)

	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	text = StripFence(text)

	value, err := literal.Parse(text)
	if err != nil {
		span, ok := salvageSpan(text)
		if !ok {
			return Result{}, &oaserrors.ExtractionError{Stage: StageLiteral, Cause: err}
		}
		var serr error
		value, serr = literal.Parse(span)
		if serr != nil {
			return Result{}, &oaserrors.ExtractionError{
				Stage:   StageSalvage,
				Message: "no literal mapping found in response",
				Cause:   err,
			}
		}
		x.logger.Debug("recovered literal from surrounding text",
			"skipped_before", strings.Index(text, span), "bytes", len(span))
	}

	record, ok := value.(map[string]any)
	if !ok {
		return Result{}, &oaserrors.ExtractionError{
			Stage:   StageShape,
			Message: fmt.Sprintf("top-level value is %s, not a mapping", kind(value)),
		}
	}
	return normalize(record, raw), nil
}

// salvageSpan returns the text from the first '{' to the last '}' when that
// span is a proper part of text.
func salvageSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	span := text[start : end+1]
	if span == text {
		return "", false
	}
	return span, true
}

func normalize(record map[string]any, raw string) Result {
	result := Result{
		YAML:         documentField(record["yaml"], yamlEncode),
		JSON:         documentField(record["json"], jsonEncode),
		Explanations: explanations(record["explanations"]),
		RawResponse:  raw,
	}
	if s, ok := record["raw_response"].(string); ok {
		if s = cleanString(s); s != "" {
			result.RawResponse = s
		}
	}
	return result
}

// documentField coerces a yaml or json field to a string. Structured values
// are re-encoded with encode.
func documentField(v any, encode func(any) (string, error)) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return cleanString(val)
	case map[string]any, []any:
		s, err := encode(val)
		if err != nil {
			return cleanString(stringify(val))
		}
		return cleanString(s)
	default:
		return stringify(val)
	}
}

func jsonEncode(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	return string(data), err
}

func yamlEncode(v any) (string, error) {
	data, err := yaml.Marshal(v)
	return string(data), err
}

// explanations coerces the explanations field. Sequences are mapped
// element-wise, a non-empty string becomes a single entry, and anything else
// yields no entries.
func explanations(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, cleanString(s))
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	case string:
		if s := cleanString(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}

func cleanString(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// stringify renders a scalar the way it would appear in a JSON document.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int64, float64:
		return "a number"
	case []any:
		return "a sequence"
	default:
		return fmt.Sprintf("%T", v)
	}
}
