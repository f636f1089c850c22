package mcpserver

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasmend/internal/config"
	"github.com/erraggy/oasmend/llm"
)

// testConfig returns a configuration suitable for handler tests: a single
// fast model attempt, caching on, and private URLs allowed so httptest
// servers can be fetched.
func testConfig() *config.Config {
	return &config.Config{
		Engine:             "oastools",
		MaxTokens:          1024,
		Timeout:            5 * time.Second,
		Attempts:           1,
		Backoff:            time.Millisecond,
		MaxInlineSize:      1 << 20,
		AllowPrivateIPs:    true,
		CacheEnabled:       true,
		CacheMaxSize:       8,
		CacheTTL:           time.Minute,
		CacheSweepInterval: time.Minute,
	}
}

func newTestServer(model llm.Model) *toolServer {
	return newToolServer(testConfig(), nil, model)
}

func TestNewToolServer(t *testing.T) {
	cfg := testConfig()
	s := newToolServer(cfg, nil, nil)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.logger)
	assert.Nil(t, s.model)

	cfg.CacheEnabled = false
	cfg.AllowPrivateIPs = false
	s = newToolServer(cfg, nil, nil)
	assert.Nil(t, s.cache)
	assert.NotNil(t, s.fetch.Transport, "safe client installs its own transport")
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		items  []int
		offset int
		limit  int
		want   []int
	}{
		{name: "default limit returns all when under 100", items: items, want: []int{0, 1, 2, 3, 4}},
		{name: "explicit limit", items: items, limit: 2, want: []int{0, 1}},
		{name: "offset only", items: items, offset: 2, want: []int{2, 3, 4}},
		{name: "offset and limit", items: items, offset: 1, limit: 2, want: []int{1, 2}},
		{name: "offset at end", items: items, offset: 4, limit: 2, want: []int{4}},
		{name: "offset beyond end", items: items, offset: 5, limit: 2, want: nil},
		{name: "negative offset", items: items, offset: -1, limit: 2, want: nil},
		{name: "limit exceeds remaining", items: items, offset: 3, limit: 10, want: []int{3, 4}},
		{name: "nil slice", items: nil, limit: 2, want: nil},
		{name: "negative limit treated as default", items: items, limit: -1, want: []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(tt.items, tt.offset, tt.limit))
		})
	}
}

func TestPaginate_Limits(t *testing.T) {
	items := make([]int, 1500)
	for i := range items {
		items[i] = i
	}
	assert.Len(t, paginate(items, 0, 0), defaultErrorLimit)
	assert.Len(t, paginate(items, 0, 1500), maxErrorLimit)
	assert.Equal(t, []int{1499}, paginate(items, 1499, math.MaxInt))
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error returns empty string", err: nil, want: ""},
		{
			name: "strips absolute path",
			err:  fmt.Errorf("failed to read spec file: open /home/user/secret/api.yaml: no such file"),
			want: "failed to read spec file: open <path>: no such file",
		},
		{
			name: "preserves non-path content",
			err:  fmt.Errorf("transport error (status 429): rate limited"),
			want: "transport error (status 429): rate limited",
		},
		{
			name: "strips multiple paths",
			err:  fmt.Errorf("compare /tmp/a.yaml and /tmp/b.yaml failed"),
			want: "compare <path> and <path> failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}
