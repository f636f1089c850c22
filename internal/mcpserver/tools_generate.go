package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type generateInput struct {
	Description string `json:"description" jsonschema:"Plain-language description of the API: resources, operations, and data they carry"`
}

type generateOutput struct {
	YAML         string   `json:"yaml"`
	JSON         string   `json:"json"`
	Explanations []string `json:"explanations"`
	RawResponse  string   `json:"raw_response"`
	Degraded     bool     `json:"degraded,omitempty"`
}

func (s *toolServer) handleGenerate(ctx context.Context, req *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, generateOutput, error) {
	p, err := s.newPipeline(req, nil)
	if err != nil {
		return errResult(err), generateOutput{}, nil
	}

	result, err := p.Generate(ctx, input.Description)
	if err != nil {
		return errResult(err), generateOutput{}, nil
	}

	return nil, generateOutput{
		YAML:         result.YAML,
		JSON:         result.JSON,
		Explanations: result.Explanations,
		RawResponse:  result.RawResponse,
		Degraded:     result.Degraded(),
	}, nil
}
