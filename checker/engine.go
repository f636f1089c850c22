package checker

import (
	"context"
	"errors"
	"strings"

	"github.com/erraggy/oastools/parser"
	"github.com/erraggy/oastools/validator"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/erraggy/oasmend/oaserrors"
)

// Engine validates a decoded document against the OpenAPI specification.
//
// Check returns nil for a valid document. Violations should be reported as an
// *oaserrors.ValidationError whose Findings hold one entry per violation; any
// other error is reported as a single finding.
type Engine interface {
	Name() string
	Check(ctx context.Context, doc *Document) error
}

// Engine names accepted by EngineByName.
const (
	EngineOASTools   = "oastools"
	EngineKinOpenAPI = "kin-openapi"
)

// EngineNames lists the names accepted by EngineByName.
var EngineNames = []string{EngineOASTools, EngineKinOpenAPI}

// EngineByName returns the engine registered under name. An empty name
// selects the default engine.
func EngineByName(name string, strict bool) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineOASTools:
		return OASTools{Strict: strict}, nil
	case EngineKinOpenAPI:
		return KinOpenAPI{}, nil
	default:
		return nil, &oaserrors.ConfigError{
			Option:  "engine",
			Value:   name,
			Message: "must be one of: " + strings.Join(EngineNames, ", "),
		}
	}
}

// OASTools validates with the oastools parser and validator. It supports
// OpenAPI 2.0 through 3.2. Warnings never make a document invalid.
type OASTools struct {
	// Strict enables oastools strict mode, which promotes best-practice
	// checks to errors
	Strict bool
}

// Name implements Engine.
func (OASTools) Name() string { return EngineOASTools }

// Check implements Engine.
func (e OASTools) Check(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed, err := parser.ParseWithOptions(
		parser.WithBytes([]byte(doc.Content)),
		parser.WithValidateStructure(true),
	)
	if err != nil {
		return &oaserrors.ValidationError{Engine: e.Name(), Findings: []string{err.Error()}, Cause: err}
	}

	result, err := validator.ValidateWithOptions(
		validator.WithParsed(*parsed),
		validator.WithIncludeWarnings(false),
		validator.WithStrictMode(e.Strict),
	)
	if err != nil {
		return &oaserrors.ValidationError{Engine: e.Name(), Findings: []string{err.Error()}, Cause: err}
	}
	if result.Valid {
		return nil
	}

	findings := make([]string, 0, len(result.Errors))
	for _, issue := range result.Errors {
		findings = append(findings, formatFinding(issue.Path, issue.Message))
	}
	return &oaserrors.ValidationError{Engine: e.Name(), Findings: findings}
}

func formatFinding(path, message string) string {
	if path == "" {
		return message
	}
	return path + ": " + message
}

// KinOpenAPI validates with github.com/getkin/kin-openapi. It supports
// OpenAPI 3.x only and never follows external references.
type KinOpenAPI struct{}

// Name implements Engine.
func (KinOpenAPI) Name() string { return EngineKinOpenAPI }

// Check implements Engine.
func (e KinOpenAPI) Check(ctx context.Context, doc *Document) error {
	if m, ok := doc.Decoded.(map[string]any); ok {
		if _, ok := m["swagger"]; ok {
			return &oaserrors.ValidationError{
				Engine:   e.Name(),
				Findings: []string{"swagger: Swagger 2.0 documents are not supported by the kin-openapi engine; use the oastools engine"},
			}
		}
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	loader.Context = ctx

	t, err := loader.LoadFromData([]byte(doc.Content))
	if err != nil {
		return &oaserrors.ValidationError{Engine: e.Name(), Findings: []string{err.Error()}, Cause: err}
	}
	if err := t.Validate(ctx); err != nil {
		var multi openapi3.MultiError
		if errors.As(err, &multi) && len(multi) > 0 {
			findings := make([]string, 0, len(multi))
			for _, merr := range multi {
				findings = append(findings, merr.Error())
			}
			return &oaserrors.ValidationError{Engine: e.Name(), Findings: findings, Cause: err}
		}
		return &oaserrors.ValidationError{Engine: e.Name(), Findings: []string{err.Error()}, Cause: err}
	}
	return nil
}
