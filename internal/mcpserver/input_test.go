package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmend/internal/testutil"
)

func TestResolve_Content(t *testing.T) {
	s := newTestServer(nil)

	text, err := s.resolve(context.Background(), specInput{Content: testutil.ValidOAS3YAML})
	require.NoError(t, err)
	assert.Equal(t, testutil.ValidOAS3YAML, text, "content is passed through verbatim")
}

func TestResolve_File(t *testing.T) {
	s := newTestServer(nil)
	path := testutil.WriteTempJSON(t, testutil.ValidOAS3JSON)

	text, err := s.resolve(context.Background(), specInput{File: path})
	require.NoError(t, err)
	assert.Equal(t, testutil.ValidOAS3JSON, text)
}

func TestResolve_FileNotFound(t *testing.T) {
	s := newTestServer(nil)

	_, err := s.resolve(context.Background(), specInput{File: "/nonexistent/path.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read spec file")
}

func TestResolve_SourceCount(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name  string
		input specInput
	}{
		{name: "none", input: specInput{}},
		{name: "file and content", input: specInput{File: "foo.yaml", Content: "bar"}},
		{name: "all three", input: specInput{File: "foo.yaml", URL: "https://example.com", Content: "bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.resolve(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "exactly one of file, url, or content must be provided")
		})
	}
}

func TestResolve_InlineSizeLimit(t *testing.T) {
	s := newTestServer(nil)
	s.cfg.MaxInlineSize = 16

	_, err := s.resolve(context.Background(), specInput{Content: strings.Repeat("a", 17)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum 16 bytes")

	text, err := s.resolve(context.Background(), specInput{Content: strings.Repeat("a", 16)})
	require.NoError(t, err)
	assert.Len(t, text, 16)
}

func TestResolve_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi.yaml":
			_, _ = w.Write([]byte(testutil.ValidOAS3YAML))
		case "/huge.yaml":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	s := newTestServer(nil)

	t.Run("success", func(t *testing.T) {
		text, err := s.resolve(context.Background(), specInput{URL: srv.URL + "/openapi.yaml"})
		require.NoError(t, err)
		assert.Equal(t, testutil.ValidOAS3YAML, text)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.resolve(context.Background(), specInput{URL: srv.URL + "/missing.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("too large", func(t *testing.T) {
		small := newTestServer(nil)
		small.cfg.MaxInlineSize = 32
		_, err := small.resolve(context.Background(), specInput{URL: srv.URL + "/huge.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum 32 bytes")
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := s.resolve(context.Background(), specInput{URL: "file:///etc/passwd"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported url scheme")
	})

	t.Run("private address blocked", func(t *testing.T) {
		cfg := testConfig()
		cfg.AllowPrivateIPs = false
		safe := newToolServer(cfg, nil, nil)

		_, err := safe.resolve(context.Background(), specInput{URL: srv.URL + "/openapi.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked request to private/loopback IP")
	})
}
