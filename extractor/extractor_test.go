package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmend/internal/testutil"
	"github.com/erraggy/oasmend/llm"
	"github.com/erraggy/oasmend/logging"
	"github.com/erraggy/oasmend/oaserrors"
)

var roundTripResult = Result{
	YAML:         "a: 1",
	JSON:         `{"a":1}`,
	Explanations: []string{"fixed a"},
	RawResponse:  "x",
}

func TestExtract_RoundTrip(t *testing.T) {
	got := ExtractText(testutil.CorrectionLiteral)
	if diff := cmp.Diff(roundTripResult, got); diff != "" {
		t.Errorf("ExtractText() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Fallback(t *testing.T) {
	const prose = "Sorry, I cannot help with that."

	got := ExtractText(prose)
	want := Result{YAML: "", JSON: "", Explanations: []string{}, RawResponse: prose}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractText() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got.Degraded())
	assert.Equal(t, Fallback(prose), got)
}

func TestExtract_Totality(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"\n\t\r\n ",
		"```",
		"```python",
		"```python\n",
		"```python\n{'yaml': 'a: 1'",
		"```\n```",
		"{",
		"}",
		"}{",
		"{'yaml'",
		"{'yaml': ",
		"{'yaml': 'a: 1',",
		"{'yaml': '''never closed",
		"[1, 2, 3]",
		"'just a string'",
		"42",
		"None",
		"{1: 2}",
		"{'a': {'b': {'c': [}}}",
		"\x00\x01\x02\xff\xfe",
		"\xef\xbb\xbf{'yaml': 'bom'}",
		"{'yaml': '\xff\xfe'}",
		"__import__('os').system('rm -rf /')",
		"eval(\"{'yaml': 'x'}\")",
		"lambda: {'yaml': 1}",
		"{'yaml': open('/etc/passwd').read()}",
		strings.Repeat("{'yaml': ", 10000),
		strings.Repeat("[", 100000),
		strings.Repeat("(", 5000) + strings.Repeat(")", 5000),
		strings.Repeat("a", 1<<20),
		"```json\n" + strings.Repeat("{", 300) + strings.Repeat("}", 300) + "\n```",
	}

	rng := rand.New(rand.NewSource(1))
	alphabet := []byte("{}[]()'\":,`\\ \n\tabcxyuUr0123456789_-+.eTrueFalseNone#")
	for i := 0; i < 500; i++ {
		b := make([]byte, rng.Intn(80))
		for j := range b {
			if rng.Intn(10) == 0 {
				b[j] = byte(rng.Intn(256))
			} else {
				b[j] = alphabet[rng.Intn(len(alphabet))]
			}
		}
		inputs = append(inputs, string(b))
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := ExtractText(in)
			assert.NotNil(t, got.Explanations, "explanations must never be nil for %q", truncateForTest(in))

			_, err := TryExtract(llm.PlainText(in))
			if err != nil {
				assert.Equal(t, Fallback(in), got)
				assert.True(t, errors.Is(err, oaserrors.ErrExtraction))
			}
		})
	}
}

func TestExtract_FenceIdempotence(t *testing.T) {
	want := ExtractText(testutil.CorrectionLiteral)

	tags := []string{"", "python", "py", "json", "json5", "javascript", "js", "yaml", "text", "Python", "JSON"}
	for _, tag := range tags {
		t.Run("tag "+tag, func(t *testing.T) {
			wrapped := "```" + tag + "\n" + testutil.CorrectionLiteral + "\n```"
			if diff := cmp.Diff(want, ExtractText(wrapped)); diff != "" {
				t.Errorf("fenced mismatch (-want +got):\n%s", diff)
			}
		})
	}

	variants := map[string]string{
		"surrounding whitespace": "\n\n  ```python\n" + testutil.CorrectionLiteral + "\n```  \n",
		"CRLF line endings":      "```python\r\n" + testutil.CorrectionLiteral + "\r\n```",
		"single line":            "```" + testutil.CorrectionLiteral + "```",
		"single line with tag":   "```python " + testutil.CorrectionLiteral + "```",
		"unclosed fence":         "```python\n" + testutil.CorrectionLiteral,
		"unknown tag":            "```python3\n" + testutil.CorrectionLiteral + "\n```",
		"commentary after fence": "```python\n" + testutil.CorrectionLiteral + "\n```\nLet me know if you need anything else!",
	}
	for name, input := range variants {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(want, ExtractText(input)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_Salvage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "prose preamble", input: "Here is the corrected specification:\n" + testutil.CorrectionLiteral},
		{name: "trailing commentary", input: testutil.CorrectionLiteral + "\n\nI fixed the version field."},
		{name: "both", input: "Sure! " + testutil.CorrectionLiteral + " Hope this helps."},
		{name: "prose then fence", input: "Here you go:\n```python\n" + testutil.CorrectionLiteral + "\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(roundTripResult, ExtractText(tt.input)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTryExtract_Stages(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStage string
	}{
		{name: "prose", input: "Sorry, I cannot help with that.", wantStage: StageLiteral},
		{name: "empty", input: "", wantStage: StageLiteral},
		{name: "code", input: "__import__('os').system('ls')", wantStage: StageLiteral},
		{name: "braces in prose", input: "Use {name} as a path parameter and close with }", wantStage: StageSalvage},
		{name: "truncated", input: "{'yaml': 'openapi: 3.0.3', 'json': '{\"openapi\"", wantStage: StageLiteral},
		{name: "truncated with inner braces", input: "{'yaml': 'x', 'json': '{\"a\": {}}', 'explanations': ['", wantStage: StageSalvage},
		{name: "sequence", input: "['fixed a', 'fixed b']", wantStage: StageShape},
		{name: "string", input: "'a: 1'", wantStage: StageShape},
		{name: "null", input: "None", wantStage: StageShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := TryExtract(llm.PlainText(tt.input))
			require.Error(t, err)
			assert.Equal(t, Result{}, result)
			assert.True(t, errors.Is(err, oaserrors.ErrExtraction))

			var eerr *oaserrors.ExtractionError
			require.True(t, errors.As(err, &eerr))
			assert.Equal(t, tt.wantStage, eerr.Stage)
		})
	}
}

func TestExtract_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "explanations as string",
			input: `{'yaml': 'a: 1', 'explanations': '  fixed a  ', 'raw_response': 'x'}`,
			want:  Result{YAML: "a: 1", Explanations: []string{"fixed a"}, RawResponse: "x"},
		},
		{
			name:  "explanations as empty string",
			input: `{'explanations': '   ', 'raw_response': 'x'}`,
			want:  Result{Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "explanations as number",
			input: `{'explanations': 3, 'raw_response': 'x'}`,
			want:  Result{Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "explanations as mapping",
			input: `{'explanations': {'a': 'b'}, 'raw_response': 'x'}`,
			want:  Result{Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "explanations as tuple with mixed entries",
			input: `{'explanations': (' one ', 2, 2.5, True, None, {'k': 'v'}, ['n']), 'raw_response': 'x'}`,
			want:  Result{Explanations: []string{"one", "2", "2.5", "true", "", `{"k":"v"}`, `["n"]`}, RawResponse: "x"},
		},
		{
			name:  "json as mapping",
			input: `{'json': {'a': 1, 'b': [True, None]}, 'raw_response': 'x'}`,
			want:  Result{JSON: "{\n  \"a\": 1,\n  \"b\": [\n    true,\n    null\n  ]\n}", Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "scalars stringified",
			input: `{'yaml': 42, 'json': False, 'raw_response': 'x'}`,
			want:  Result{YAML: "42", JSON: "false", Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "null fields",
			input: `{'yaml': None, 'json': null, 'explanations': None, 'raw_response': None}`,
			want:  Result{Explanations: []string{}, RawResponse: `{'yaml': None, 'json': null, 'explanations': None, 'raw_response': None}`},
		},
		{
			name:  "missing fields",
			input: `{}`,
			want:  Result{Explanations: []string{}, RawResponse: "{}"},
		},
		{
			name:  "extra keys ignored",
			input: `{'yaml': 'a: 1', 'notes': 'ignored', 'confidence': 0.9, 'raw_response': 'x'}`,
			want:  Result{YAML: "a: 1", Explanations: []string{}, RawResponse: "x"},
		},
		{
			name:  "strings trimmed",
			input: `{'yaml': '\n  a: 1\n', 'json': '  {"a":1}  ', 'explanations': ['  fixed a\n'], 'raw_response': ' x '}`,
			want:  roundTripResult,
		},
		{
			name:  "JSON-shaped answer",
			input: `{"yaml": "a: 1", "json": "{\"a\":1}", "explanations": ["fixed a"], "raw_response": "x"}`,
			want:  roundTripResult,
		},
		{
			name:  "NFC normalization",
			input: "{'yaml': 'title: Cafe\u0301', 'explanations': ['re\u0301sume\u0301'], 'raw_response': 'x'}",
			want:  Result{YAML: "title: Caf\u00e9", Explanations: []string{"r\u00e9sum\u00e9"}, RawResponse: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractText(tt.input)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_YAMLMapping(t *testing.T) {
	got := ExtractText(`{'yaml': {'openapi': '3.0.3', 'info': {'title': 'T', 'version': '1.0.0'}}}`)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(got.YAML), &decoded))
	assert.Equal(t, map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "T", "version": "1.0.0"},
	}, decoded)
	assert.False(t, strings.HasSuffix(got.YAML, "\n"))
}

func TestExtract_RawResponseDefault(t *testing.T) {
	input := "  {'yaml': 'a: 1', 'raw_response': ''}  "
	got := ExtractText(input)

	assert.Equal(t, "a: 1", got.YAML)
	assert.Equal(t, input, got.RawResponse, "missing raw_response keeps the original text")
}

func TestExtract_MultilineDocument(t *testing.T) {
	got := ExtractText(testutil.CorrectedOAS3Literal)

	assert.True(t, strings.HasPrefix(got.YAML, "openapi: 3.0.3\ninfo:\n"))
	assert.True(t, strings.HasSuffix(got.YAML, "description: A list of pets"))
	assert.True(t, json.Valid([]byte(got.JSON)))
	assert.Equal(t, []string{"Added the required info.version field"}, got.Explanations)
	assert.Equal(t, "Added info.version", got.RawResponse)
}

func TestExtract_WrappedText(t *testing.T) {
	resp := llm.WrappedText{Content: "\n" + testutil.CorrectionLiteral + "\n", Role: "assistant", Model: "m"}
	if diff := cmp.Diff(roundTripResult, Extract(resp)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Fallback(""), Extract(nil))
	assert.Equal(t, Fallback("plain"), Extract(llm.WrappedText{Content: "plain"}))
}

func TestExtractor_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogAdapter(logging.New(&buf, slog.LevelDebug, "json"))
	x := New(WithLogger(logger))

	got := x.Extract(llm.PlainText("no structure here"))
	assert.True(t, got.Degraded())

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"stage":"literal"`)

	buf.Reset()
	got = x.Extract(llm.PlainText("Preamble: " + testutil.CorrectionLiteral))
	assert.False(t, got.Degraded())
	assert.Contains(t, buf.String(), "recovered literal")
	assert.NotContains(t, buf.String(), `"level":"WARN"`)
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(Fallback("raw"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"yaml": "", "json": "", "explanations": [], "raw_response": "raw"}`, string(data))
}

func TestResult_Degraded(t *testing.T) {
	assert.True(t, Fallback("x").Degraded())
	assert.False(t, roundTripResult.Degraded())
	assert.False(t, Result{Explanations: []string{"only"}}.Degraded())
}

func truncateForTest(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
