package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasmend/checker"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/oaserrors"
	"github.com/erraggy/oasmend/pipeline"
)

const samplingEndpoint = "mcp sampling"

// samplingModel answers prompts by asking the connected MCP client for a
// completion. Sampling failures are never retried.
type samplingModel struct {
	session   *mcp.ServerSession
	maxTokens int64
}

var _ llm.Model = (*samplingModel)(nil)

func (m *samplingModel) Invoke(ctx context.Context, prompt string) (llm.Response, error) {
	res, err := m.session.CreateMessage(ctx, &mcp.CreateMessageParams{
		Messages: []*mcp.SamplingMessage{
			{Role: "user", Content: &mcp.TextContent{Text: prompt}},
		},
		MaxTokens: m.maxTokens,
	})
	if err != nil {
		return nil, &oaserrors.TransportError{Endpoint: samplingEndpoint, Message: "sampling request failed", Cause: err}
	}
	text, ok := res.Content.(*mcp.TextContent)
	if !ok {
		return nil, &oaserrors.TransportError{
			Endpoint: samplingEndpoint,
			Message:  fmt.Sprintf("client returned %T content, want text", res.Content),
		}
	}
	return llm.WrappedText{Content: text.Text, Role: string(res.Role), Model: res.Model}, nil
}

var errNoModel = errors.New("no model available: set OASMEND_API_KEY or connect from a client that supports sampling")

// modelFor returns the configured model, or a sampling model bound to the
// session that made req.
func (s *toolServer) modelFor(req *mcp.CallToolRequest) (llm.Model, error) {
	if s.model != nil {
		return s.model, nil
	}
	if req == nil || req.Session == nil {
		return nil, errNoModel
	}
	return &samplingModel{session: req.Session, maxTokens: int64(s.cfg.MaxTokens)}, nil
}

// newChecker builds a checker for the requested engine settings, falling back
// to the configured defaults.
func (s *toolServer) newChecker(engine string, strict *bool) (*checker.Checker, error) {
	name := s.cfg.Engine
	if engine != "" {
		name = engine
	}
	st := s.cfg.Strict
	if strict != nil {
		st = *strict
	}

	e, err := checker.EngineByName(name, st)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		e = &cachedEngine{
			inner:  e,
			prefix: fmt.Sprintf("%s:strict=%t", e.Name(), st),
			cache:  s.cache,
			ttl:    s.cfg.CacheTTL,
		}
	}
	return checker.New(checker.WithEngine(e), checker.WithLogger(s.logger))
}

// newPipeline builds a correction pipeline around chk and the request's model.
func (s *toolServer) newPipeline(req *mcp.CallToolRequest, chk *checker.Checker) (*pipeline.Pipeline, error) {
	model, err := s.modelFor(req)
	if err != nil {
		return nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithLogger(s.logger),
		pipeline.WithTimeout(s.cfg.Timeout),
		pipeline.WithRetry(s.cfg.Attempts, s.cfg.Backoff),
	}
	if chk != nil {
		opts = append(opts, pipeline.WithChecker(chk))
	}
	return pipeline.New(model, opts...)
}
