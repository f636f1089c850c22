package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/erraggy/oasmend/internal/options"
)

// fetchTimeout bounds a URL fetch, including redirects and the body read.
const fetchTimeout = 30 * time.Second

// specInput represents the three ways an OAS spec can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"http or https URL to fetch an OAS document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// resolve returns the document text from whichever input was provided.
// The text is returned verbatim; decoding is left to the checker so that
// undecodable documents are reported as validation errors.
func (s *toolServer) resolve(ctx context.Context, in specInput) (string, error) {
	if err := options.RequireExactlyOne("spec",
		options.Source{Name: "file", Set: in.File != ""},
		options.Source{Name: "url", Set: in.URL != ""},
		options.Source{Name: "content", Set: in.Content != ""},
	); err != nil {
		return "", err
	}

	switch {
	case in.Content != "":
		if int64(len(in.Content)) > s.cfg.MaxInlineSize {
			return "", fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASMEND_MAX_INLINE_SIZE to increase",
				len(in.Content), s.cfg.MaxInlineSize)
		}
		return in.Content, nil
	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return "", fmt.Errorf("failed to read spec file: %w", err)
		}
		return string(data), nil
	default:
		return s.fetchURL(ctx, in.URL)
	}
}

// fetchURL downloads a document, reading at most MaxInlineSize bytes.
func (s *toolServer) fetchURL(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q; use http or https", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml, */*")

	resp, err := s.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch spec: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch spec: %s returned status %d", u.Redacted(), resp.StatusCode)
	}

	limit := s.cfg.MaxInlineSize
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read spec body: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("fetched spec exceeds maximum %d bytes; set OASMEND_MAX_INLINE_SIZE to increase", limit)
	}
	return string(data), nil
}
