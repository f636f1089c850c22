package pipeline

import (
	"strings"
)

const outputFormat = `Respond with exactly one Python dictionary literal and nothing else.
It must have exactly these four keys:
- 'yaml': the corrected specification serialized as YAML, as a string
- 'json': the corrected specification serialized as JSON, as a string
- 'explanations': a list of strings, one per change you made
- 'raw_response': a one-paragraph summary of your changes, as a string
Do not wrap the dictionary in markdown code fences. Do not write any text before or after it.
Example:
{'yaml': 'openapi: 3.0.3\n...', 'json': '{"openapi": "3.0.3", ...}', 'explanations': ['Added the missing info.version field'], 'raw_response': 'Added info.version.'}`

// CorrectionPrompt builds the prompt asking a model to correct spec. The
// spec and every error are embedded verbatim, one error per line.
func CorrectionPrompt(spec string, errors []string) string {
	var b strings.Builder
	b.WriteString("You are an expert in OpenAPI and Swagger specifications. ")
	b.WriteString("The following OpenAPI specification has validation errors. ")
	b.WriteString("Correct every error and explain each change you make.\n\n")

	b.WriteString("Original specification:\n")
	b.WriteString(spec)
	if !strings.HasSuffix(spec, "\n") {
		b.WriteByte('\n')
	}

	b.WriteString("\nValidation errors:\n")
	for _, e := range errors {
		b.WriteString("- ")
		b.WriteString(e)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(outputFormat)
	b.WriteByte('\n')
	return b.String()
}

// GenerationPrompt builds the prompt asking a model to write a complete
// OpenAPI 3.0 document for description.
func GenerationPrompt(description string) string {
	var b strings.Builder
	b.WriteString("You are an expert in OpenAPI and Swagger specifications. ")
	b.WriteString("Write a complete, valid OpenAPI 3.0.3 specification for the API described below. ")
	b.WriteString("Include info, servers, paths with operationIds and responses, and component schemas.\n\n")

	b.WriteString("API description:\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\n")

	b.WriteString(strings.Replace(outputFormat, "the corrected specification", "the specification", 2))
	b.WriteString("\nIn 'explanations', list the design decisions you made.\n")
	return b.String()
}
