// Package oasmend validates OpenAPI Specification documents and, when
// validation fails, asks a language model to propose a corrected document
// together with an explanation of every change.
//
// The interesting part is not the model call but what happens to its
// answer. Models are asked to return a single literal mapping with the keys
// yaml, json, explanations and raw_response, and they routinely ignore that
// instruction: they add prose, wrap the answer in code fences, truncate it,
// or return JSON where a string was requested. The extractor package turns
// any such answer into a well-shaped record and never fails; a response it
// cannot parse becomes a degraded record that keeps the raw text.
//
// # Packages
//
//   - checker: Decode a document (JSON or YAML) and validate it with a
//     pluggable engine (oastools by default, kin-openapi optionally)
//   - extractor: Recover a structured correction from free-form model output
//   - llm: The model capability, an OpenAI-compatible chat client, and the
//     Response sum type
//   - pipeline: Validate, prompt, invoke (with timeout and retry), extract
//   - oaserrors: Error taxonomy usable with errors.Is and errors.As
//   - logging: Minimal structured logger interface with a log/slog adapter
//
// # Quick Start
//
// Validate a document:
//
//	import "github.com/erraggy/oasmend/checker"
//
//	result := checker.Validate(specText)
//	if !result.Valid {
//		for _, e := range result.Errors {
//			fmt.Println(e)
//		}
//	}
//
// Run the correction pipeline:
//
//	import (
//		"github.com/erraggy/oasmend/llm"
//		"github.com/erraggy/oasmend/pipeline"
//	)
//
//	client := &llm.Client{APIKey: os.Getenv("GROQ_API_KEY")}
//	p, err := pipeline.New(client, pipeline.WithTimeout(30*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := p.Run(ctx, specText)
//	if err != nil {
//		log.Fatal(err) // transport failure after all retries
//	}
//	if !result.Valid && result.Corrected.YAML == "" {
//		// degraded: inspect result.Corrected.RawResponse
//	}
//
// # Command Line
//
// The oasmend command exposes the same operations:
//
//	oasmend validate openapi.yaml
//	oasmend correct --events -o fixed/ openapi.yaml
//	oasmend generate "A pet store with pets and owners"
//	oasmend mcp
package oasmend
