package checker

import (
	"encoding/json"
	"errors"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasmend/oaserrors"
)

// Format is the serialization format of a specification document.
type Format string

const (
	// FormatJSON indicates a JSON document
	FormatJSON Format = "json"
	// FormatYAML indicates a YAML document
	FormatYAML Format = "yaml"
)

// DetectFormat reports FormatJSON when text, after trimming whitespace,
// starts with '{', and FormatYAML otherwise.
func DetectFormat(text string) Format {
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a specification as read from its source: the raw text, the
// detected format, and the generically decoded value.
type Document struct {
	// Content is the original text
	Content string
	// Format is the detected serialization format
	Format Format
	// Decoded is the result of decoding Content (map[string]any for any
	// well-formed specification)
	Decoded any
}

// Decode detects the format of text and decodes it.
// Decode failures are returned as *oaserrors.ParseError.
func Decode(text string) (*Document, error) {
	doc := &Document{Content: text, Format: DetectFormat(text)}

	var err error
	switch doc.Format {
	case FormatJSON:
		err = decodeJSON(text, &doc.Decoded)
	default:
		err = yaml.Unmarshal([]byte(text), &doc.Decoded)
		if err != nil {
			err = &oaserrors.ParseError{Format: string(FormatYAML), Cause: err}
		}
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeJSON(text string, v *any) error {
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}

	perr := &oaserrors.ParseError{Format: string(FormatJSON), Cause: err}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		perr.Line, perr.Column = position(text, int(syntaxErr.Offset))
	}
	return perr
}

// position converts a byte offset into a 1-based line and column.
func position(text string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// parseMessage returns the decoder's own message for a decode failure.
func parseMessage(err error) string {
	var perr *oaserrors.ParseError
	if errors.As(err, &perr) && perr.Cause != nil {
		return perr.Cause.Error()
	}
	return err.Error()
}
