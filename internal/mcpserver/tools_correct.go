package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasmend/extractor"
)

type correctInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OAS document to validate and correct"`
	Engine string    `json:"engine,omitempty" jsonschema:"Validation engine: oastools (default) or kin-openapi"`
	Strict *bool     `json:"strict,omitempty" jsonschema:"Enable strict validation mode (oastools engine)"`
}

type correctOutput struct {
	Valid        bool              `json:"valid"`
	Errors       []string          `json:"errors"`
	Corrected    *extractor.Result `json:"corrected,omitempty"`
	Explanations []string          `json:"explanations"`
	Degraded     bool              `json:"degraded,omitempty"`
}

func (s *toolServer) handleCorrect(ctx context.Context, req *mcp.CallToolRequest, input correctInput) (*mcp.CallToolResult, correctOutput, error) {
	text, err := s.resolve(ctx, input.Spec)
	if err != nil {
		return errResult(err), correctOutput{}, nil
	}
	chk, err := s.newChecker(input.Engine, input.Strict)
	if err != nil {
		return errResult(err), correctOutput{}, nil
	}
	p, err := s.newPipeline(req, chk)
	if err != nil {
		return errResult(err), correctOutput{}, nil
	}

	result, err := p.Run(ctx, text)
	if err != nil {
		return errResult(err), correctOutput{}, nil
	}

	output := correctOutput{
		Valid:        result.Valid,
		Errors:       result.Errors,
		Corrected:    result.Corrected,
		Explanations: result.Explanations,
	}
	if result.Corrected != nil {
		output.Degraded = result.Corrected.Degraded()
		if output.Degraded {
			s.logger.Warn("model answer could not be parsed", "bytes", len(result.Corrected.RawResponse))
		}
	}
	return nil, output, nil
}
