package checker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasmend/oaserrors"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		text string
		want Format
	}{
		{text: `{"openapi": "3.0.3"}`, want: FormatJSON},
		{text: "  \n{", want: FormatJSON},
		{text: "openapi: 3.0.3", want: FormatYAML},
		{text: "[1, 2]", want: FormatYAML},
		{text: "", want: FormatYAML},
		{text: "# comment\n{}", want: FormatYAML},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.text), "DetectFormat(%q)", tt.text)
	}
}

func TestDecode(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		doc, err := Decode(`{"openapi": "3.0.3", "paths": {}}`)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, doc.Format)
		assert.Equal(t, map[string]any{"openapi": "3.0.3", "paths": map[string]any{}}, doc.Decoded)
	})

	t.Run("YAML", func(t *testing.T) {
		text := "openapi: 3.0.3\npaths: {}\n"
		doc, err := Decode(text)
		require.NoError(t, err)
		assert.Equal(t, FormatYAML, doc.Format)
		assert.Equal(t, text, doc.Content)
		assert.Equal(t, map[string]any{"openapi": "3.0.3", "paths": map[string]any{}}, doc.Decoded)
	})

	t.Run("empty YAML is null", func(t *testing.T) {
		doc, err := Decode("")
		require.NoError(t, err)
		assert.Nil(t, doc.Decoded)
	})

	t.Run("JSON error position", func(t *testing.T) {
		_, err := Decode("{\n  \"a\": 1,\n  oops\n}")
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrParse))

		var perr *oaserrors.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "json", perr.Format)
		assert.Equal(t, 3, perr.Line)
		assert.Positive(t, perr.Column)
	})

	t.Run("parse message is the decoder message", func(t *testing.T) {
		_, err := Decode("{not valid")
		require.Error(t, err)
		msg := parseMessage(err)
		assert.NotContains(t, msg, "parse error (json)")
		assert.Contains(t, msg, "invalid character")
	})
}

func TestPosition(t *testing.T) {
	line, col := position("ab\ncd", 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = position("abc", 99)
	assert.Equal(t, 1, line)
	assert.Equal(t, 4, col)
}
