// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ValidOAS3YAML is a minimal valid OpenAPI 3.0 document in YAML.
const ValidOAS3YAML = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      responses:
        '200':
          description: A list of pets
`

// ValidOAS3JSON is ValidOAS3YAML in JSON.
const ValidOAS3JSON = `{
  "openapi": "3.0.3",
  "info": {"title": "Pet Store", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List pets",
        "responses": {"200": {"description": "A list of pets"}}
      }
    }
  }
}
`

// ValidOAS2YAML is a minimal valid Swagger 2.0 document in YAML.
const ValidOAS2YAML = `swagger: "2.0"
info:
  title: Pet Store
  version: 1.0.0
host: api.example.com
basePath: /v1
schemes:
  - https
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: A list of pets
`

// InvalidOAS3YAML decodes but is missing the required info.version field.
const InvalidOAS3YAML = `openapi: 3.0.3
info:
  title: Pet Store
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: A list of pets
`

// MalformedJSON cannot be decoded.
const MalformedJSON = "{not valid"

// CorrectionLiteral is a well-formed model answer in the requested
// four-key literal format.
const CorrectionLiteral = `{'yaml': 'a: 1', 'json': '{"a":1}', 'explanations': ['fixed a'], 'raw_response': 'x'}`

// CorrectedOAS3Literal is a model answer that carries a full corrected
// document for InvalidOAS3YAML.
const CorrectedOAS3Literal = `{
    'yaml': '''openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        '200':
          description: A list of pets
''',
    'json': '{"openapi": "3.0.3", "info": {"title": "Pet Store", "version": "1.0.0"}, "paths": {"/pets": {"get": {"operationId": "listPets", "responses": {"200": {"description": "A list of pets"}}}}}}',
    'explanations': ['Added the required info.version field'],
    'raw_response': 'Added info.version'
}`

// WriteTempSpec writes content to a file with the given name in a temporary
// directory and returns its path.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempSpec(t *testing.T, name, content string) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temporary spec file: %v", err)
	}

	return tmpFile
}

// WriteTempYAML writes content to a temporary .yaml file.
func WriteTempYAML(t *testing.T, content string) string {
	t.Helper()
	return WriteTempSpec(t, "openapi.yaml", content)
}

// WriteTempJSON writes content to a temporary .json file.
func WriteTempJSON(t *testing.T, content string) string {
	t.Helper()
	return WriteTempSpec(t, "openapi.json", content)
}
