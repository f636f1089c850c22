package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectionPrompt(t *testing.T) {
	spec := "openapi: 3.0.3\ninfo:\n  title: Pets\npaths: {}"
	errs := []string{
		"info.version: missing required field",
		"paths./pets: path must begin with /",
	}

	prompt := CorrectionPrompt(spec, errs)

	assert.Contains(t, prompt, spec)
	assert.Contains(t, prompt, "- "+errs[0]+"\n- "+errs[1]+"\n", "errors are listed in order, one per line")
	assert.Less(t, strings.Index(prompt, spec), strings.Index(prompt, errs[0]), "spec precedes errors")
	for _, key := range []string{"'yaml'", "'json'", "'explanations'", "'raw_response'"} {
		assert.Contains(t, prompt, key)
	}
	assert.Contains(t, prompt, "code fences")
}

func TestCorrectionPrompt_Verbatim(t *testing.T) {
	// Whitespace and quoting in the spec must survive untouched.
	spec := "{\n\t\"openapi\": \"3.0.3\",\n  \"info\": {'odd': \"\\u00e9\"}\n}\n"
	prompt := CorrectionPrompt(spec, []string{"Parsing error: invalid character '\\''"})

	assert.Contains(t, prompt, "Original specification:\n"+spec+"\nValidation errors:\n")
	assert.Contains(t, prompt, "- Parsing error: invalid character '\\''\n")
}

func TestCorrectionPrompt_NoErrors(t *testing.T) {
	prompt := CorrectionPrompt("x", nil)
	assert.Contains(t, prompt, "Validation errors:\n\n")
}

func TestGenerationPrompt(t *testing.T) {
	prompt := GenerationPrompt("\n  A todo list API with due dates  \n")

	assert.Contains(t, prompt, "API description:\nA todo list API with due dates\n\n")
	assert.Contains(t, prompt, "OpenAPI 3.0.3")
	assert.Contains(t, prompt, "'yaml': the specification serialized as YAML")
	assert.NotContains(t, prompt, "corrected specification")
}
