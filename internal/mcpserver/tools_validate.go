package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OAS document to validate"`
	Engine string    `json:"engine,omitempty" jsonschema:"Validation engine: oastools (default, OAS 2.0 through 3.2) or kin-openapi (OAS 3.x only)"`
	Strict *bool     `json:"strict,omitempty" jsonschema:"Enable strict validation mode (oastools engine)"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N errors (for pagination)"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of errors to return (default 100)"`
}

type validateOutput struct {
	Valid      bool     `json:"valid"`
	Engine     string   `json:"engine"`
	ErrorCount int      `json:"error_count"`
	Returned   int      `json:"returned"`
	Errors     []string `json:"errors"`
}

func (s *toolServer) handleValidate(ctx context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	text, err := s.resolve(ctx, input.Spec)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	chk, err := s.newChecker(input.Engine, input.Strict)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	result := chk.Validate(ctx, text)
	if err := ctx.Err(); err != nil {
		return errResult(err), validateOutput{}, nil
	}

	page := paginate(result.Errors, input.Offset, input.Limit)
	if page == nil {
		page = []string{}
	}
	output := validateOutput{
		Valid:      result.Valid,
		Engine:     chk.Engine().Name(),
		ErrorCount: len(result.Errors),
		Returned:   len(page),
		Errors:     page,
	}
	return nil, output, nil
}
