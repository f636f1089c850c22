package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmend/llm"
)

// TestFixturesDecode verifies that every document fixture is well-formed.
func TestFixturesDecode(t *testing.T) {
	for name, text := range map[string]string{
		"ValidOAS3YAML":   ValidOAS3YAML,
		"ValidOAS2YAML":   ValidOAS2YAML,
		"InvalidOAS3YAML": InvalidOAS3YAML,
	} {
		t.Run(name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, yaml.Unmarshal([]byte(text), &doc))
			assert.Contains(t, doc, "info")
			assert.Contains(t, doc, "paths")
		})
	}

	t.Run("ValidOAS3JSON", func(t *testing.T) {
		var fromJSON, fromYAML map[string]any
		require.NoError(t, json.Unmarshal([]byte(ValidOAS3JSON), &fromJSON))
		require.NoError(t, yaml.Unmarshal([]byte(ValidOAS3YAML), &fromYAML))
		assert.Equal(t, fromYAML["openapi"], fromJSON["openapi"])
		assert.Equal(t, fromYAML["info"], fromJSON["info"])
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		var v any
		assert.Error(t, json.Unmarshal([]byte(MalformedJSON), &v))
	})
}

// TestWriteTempSpec verifies that content is written to a temporary file.
func TestWriteTempSpec(t *testing.T) {
	path := WriteTempYAML(t, ValidOAS3YAML)

	assert.FileExists(t, path, "Temporary YAML file should exist")
	assert.Equal(t, ".yaml", filepath.Ext(path), "File should have .yaml extension")
	assert.True(t, filepath.IsAbs(path), "Path should be absolute")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ValidOAS3YAML, string(data))

	jsonPath := WriteTempJSON(t, ValidOAS3JSON)
	assert.Equal(t, ".json", filepath.Ext(jsonPath), "File should have .json extension")
}

// TestWriteTempSpecCleanup verifies that temporary files are cleaned up after test.
func TestWriteTempSpecCleanup(t *testing.T) {
	var path string

	t.Run("create", func(t *testing.T) {
		path = WriteTempSpec(t, "spec.yaml", "openapi: 3.0.3\n")
		assert.FileExists(t, path)
	})

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "File should be cleaned up after subtest")
}

func TestCountingModel(t *testing.T) {
	t.Run("records prompts and repeats last response", func(t *testing.T) {
		m := &CountingModel{Responses: []llm.Response{llm.PlainText("one"), llm.PlainText("two")}}
		ctx := context.Background()

		for _, want := range []string{"one", "two", "two"} {
			resp, err := m.Invoke(ctx, "p-"+want)
			require.NoError(t, err)
			assert.Equal(t, want, llm.Text(resp))
		}
		assert.Equal(t, 3, m.Calls())
		assert.Equal(t, []string{"p-one", "p-two", "p-two"}, m.Prompts())
	})

	t.Run("errors by call index", func(t *testing.T) {
		boom := errors.New("boom")
		m := &CountingModel{Responses: []llm.Response{llm.PlainText("ok")}, Errors: []error{boom, nil}}

		_, err := m.Invoke(context.Background(), "a")
		assert.ErrorIs(t, err, boom)

		resp, err := m.Invoke(context.Background(), "b")
		require.NoError(t, err)
		assert.Equal(t, "ok", llm.Text(resp))
	})

	t.Run("no responses", func(t *testing.T) {
		resp, err := (&CountingModel{}).Invoke(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, llm.PlainText(""), resp)
	})

	t.Run("delay honors context", func(t *testing.T) {
		m := NewCountingModel("late")
		m.Delay = time.Minute

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := m.Invoke(ctx, "a")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, m.Calls())
	})

	t.Run("concurrent use", func(t *testing.T) {
		m := NewCountingModel("x")
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = m.Invoke(context.Background(), "p")
			}()
		}
		wg.Wait()
		assert.Equal(t, 20, m.Calls())
	})
}
