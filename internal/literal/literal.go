// Package literal parses a restricted literal grammar: mappings, sequences,
// strings, numbers, booleans and null, as written by language models that
// were asked for a dictionary-shaped answer.
//
// The grammar is the union of Python literal syntax and JSON:
//   - {key: value, ...} mappings (trailing comma allowed)
//   - [a, b] lists and (a, b) tuples, both returned as []any
//   - '...', "...", '''...''', """...""" strings with r/u/b prefixes,
//     backslash escapes and implicit concatenation of adjacent strings
//   - integers (decimal, 0x, 0o, 0b, with _ separators) and floats
//   - True/False/None and true/false/null
//   - # comments running to end of line
//
// Nothing else is accepted. There are no names, calls, operators or
// expressions, so parsing untrusted text cannot execute anything. Nesting is
// bounded by MaxDepth.
//
// Single-quoted strings may contain raw newlines. Python rejects that, but
// models produce it often enough that accepting it recovers many answers.
package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// MaxDepth is the maximum nesting depth of mappings and sequences.
const MaxDepth = 256

// SyntaxError describes where and why parsing stopped.
type SyntaxError struct {
	// Offset is the byte offset into the input
	Offset int
	// Line is the 1-based line number
	Line int
	// Column is the 1-based column (in bytes)
	Column int
	// Msg describes the problem
	Msg string
}

// Error returns a human-readable error message.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

// Parse parses text as exactly one literal value surrounded only by
// whitespace and comments.
//
// Mappings are returned as map[string]any, sequences as []any, integers as
// int64 (float64 when they overflow), floats as float64, strings as string,
// booleans as bool and null as nil.
func Parse(text string) (any, error) {
	p := &parser{input: text}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("empty input")
	}
	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected trailing content %q", p.snippet())
	}
	return v, nil
}

// parser is the internal literal parser.
type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	return p.input[p.pos]
}

func (p *parser) consume(ch byte) bool {
	if !p.eof() && p.input[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

func (p *parser) snippet() string {
	rest := p.input[p.pos:]
	if len(rest) > 20 {
		rest = rest[:20]
	}
	return rest
}

func (p *parser) errorf(format string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.input); i++ {
		if p.input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Offset: p.pos, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		case '#':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) parseValue(depth int) (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	ch := p.peek()
	switch {
	case ch == '{':
		p.pos++
		return p.parseMapping(depth + 1)
	case ch == '[':
		p.pos++
		return p.parseSequence(']', depth+1)
	case ch == '(':
		p.pos++
		return p.parseSequence(')', depth+1)
	case p.atString():
		return p.parseStrings()
	case isDigit(ch) || ch == '-' || ch == '+' || (ch == '.' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1])):
		return p.parseNumber()
	case isIdentStart(ch):
		return p.parseKeyword()
	default:
		return nil, p.errorf("unexpected character %q", ch)
	}
}

func (p *parser) parseMapping(depth int) (any, error) {
	if depth > MaxDepth {
		return nil, p.errorf("nesting exceeds maximum depth %d", MaxDepth)
	}
	result := make(map[string]any)
	p.skipSpace()
	if p.consume('}') {
		return result, nil
	}

	for {
		keyPos := p.pos
		key, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		name, ok := mappingKey(key)
		if !ok {
			p.pos = keyPos
			return nil, p.errorf("mapping key must be a scalar, got %T", key)
		}

		p.skipSpace()
		if !p.consume(':') {
			return nil, p.errorf("expected ':' after mapping key")
		}

		value, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		result[name] = value

		p.skipSpace()
		if p.consume('}') {
			return result, nil
		}
		if !p.consume(',') {
			if p.eof() {
				return nil, p.errorf("unterminated mapping")
			}
			return nil, p.errorf("expected ',' or '}' in mapping")
		}
		p.skipSpace()
		if p.consume('}') {
			return result, nil
		}
	}
}

// mappingKey converts a parsed key to its string form. Containers are not
// valid keys.
func mappingKey(key any) (string, bool) {
	switch k := key.(type) {
	case string:
		return k, true
	case int64:
		return strconv.FormatInt(k, 10), true
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), true
	case bool:
		if k {
			return "True", true
		}
		return "False", true
	case nil:
		return "None", true
	default:
		return "", false
	}
}

func (p *parser) parseSequence(closer byte, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, p.errorf("nesting exceeds maximum depth %d", MaxDepth)
	}
	result := make([]any, 0)
	p.skipSpace()
	if p.consume(closer) {
		return result, nil
	}

	sawComma := false
	for {
		value, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		result = append(result, value)

		p.skipSpace()
		if p.consume(closer) {
			break
		}
		if !p.consume(',') {
			if p.eof() {
				return nil, p.errorf("unterminated sequence")
			}
			return nil, p.errorf("expected ',' or %q in sequence", closer)
		}
		sawComma = true
		p.skipSpace()
		if p.consume(closer) {
			break
		}
	}

	// (x) is a parenthesized value, not a tuple.
	if closer == ')' && len(result) == 1 && !sawComma {
		return result[0], nil
	}
	return result, nil
}

func (p *parser) parseKeyword() (any, error) {
	start := p.pos
	for !p.eof() && isIdentChar(p.peek()) {
		p.pos++
	}
	word := p.input[start:p.pos]
	switch word {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	}
	p.pos = start
	return nil, p.errorf("unexpected identifier %q", word)
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	digitsStart := p.pos
	for !p.eof() {
		ch := p.peek()
		if isDigit(ch) || ch == '.' || ch == '_' || isLetter(ch) {
			p.pos++
			continue
		}
		// Exponent sign: 1e-5, 2E+10
		if (ch == '-' || ch == '+') && p.pos > digitsStart {
			prev := p.input[p.pos-1]
			if (prev == 'e' || prev == 'E') && !isHexLiteral(p.input[digitsStart:p.pos]) {
				p.pos++
				continue
			}
		}
		break
	}

	raw := p.input[start:p.pos]
	if p.pos == digitsStart {
		p.pos = start
		return nil, p.errorf("invalid number %q", raw)
	}
	cleaned := strings.ReplaceAll(raw, "_", "")
	body := strings.TrimLeft(cleaned, "+-")
	lower := strings.ToLower(body)

	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseInt(cleaned, 0, 64)
		if err != nil {
			p.pos = start
			return nil, p.errorf("invalid number %q", raw)
		}
		return n, nil
	}

	if strings.ContainsAny(lower, ".e") {
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsInf(f, 0) {
			p.pos = start
			return nil, p.errorf("invalid number %q", raw)
		}
		return f, nil
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err == nil {
		return n, nil
	}
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		f, ferr := strconv.ParseFloat(cleaned, 64)
		if ferr == nil {
			return f, nil
		}
	}
	p.pos = start
	return nil, p.errorf("invalid number %q", raw)
}

func isHexLiteral(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// atString reports whether a string literal (with optional prefix) starts here.
func (p *parser) atString() bool {
	_, _, ok := p.stringPrefix()
	return ok
}

// stringPrefix returns the prefix length and whether the string is raw.
func (p *parser) stringPrefix() (n int, raw bool, ok bool) {
	for i := p.pos; i < len(p.input) && i-p.pos <= 2; i++ {
		ch := p.input[i]
		switch ch {
		case '\'', '"':
			return i - p.pos, raw, true
		case 'r', 'R':
			raw = true
		case 'u', 'U', 'b', 'B':
		default:
			return 0, false, false
		}
	}
	return 0, false, false
}

// parseStrings parses one or more adjacent string literals and concatenates them.
func (p *parser) parseStrings() (any, error) {
	var sb strings.Builder
	for {
		if err := p.parseString(&sb); err != nil {
			return nil, err
		}
		save := p.pos
		p.skipSpace()
		if p.eof() || !p.atString() {
			p.pos = save
			return sb.String(), nil
		}
	}
}

func (p *parser) parseString(sb *strings.Builder) error {
	prefixLen, raw, _ := p.stringPrefix()
	p.pos += prefixLen
	start := p.pos
	quote := p.peek()
	p.pos++

	triple := false
	if p.pos+1 < len(p.input) && p.input[p.pos] == quote && p.input[p.pos+1] == quote {
		triple = true
		p.pos += 2
	}

	for !p.eof() {
		ch := p.peek()
		if ch == quote {
			if !triple {
				p.pos++
				return nil
			}
			if p.pos+2 < len(p.input) && p.input[p.pos+1] == quote && p.input[p.pos+2] == quote {
				p.pos += 3
				return nil
			}
			sb.WriteByte(ch)
			p.pos++
			continue
		}
		if ch == '\\' {
			if err := p.parseEscape(sb, raw); err != nil {
				return err
			}
			continue
		}
		sb.WriteByte(ch)
		p.pos++
	}

	p.pos = start
	return p.errorf("unterminated string")
}

// parseEscape handles a backslash sequence at p.pos.
func (p *parser) parseEscape(sb *strings.Builder, raw bool) error {
	p.pos++ // backslash
	if p.eof() {
		sb.WriteByte('\\')
		return nil
	}
	ch := p.peek()

	if raw {
		sb.WriteByte('\\')
		sb.WriteByte(ch)
		p.pos++
		return nil
	}

	switch ch {
	case '\n':
		p.pos++
	case '\r':
		p.pos++
		p.consume('\n')
	case 'n':
		sb.WriteByte('\n')
		p.pos++
	case 't':
		sb.WriteByte('\t')
		p.pos++
	case 'r':
		sb.WriteByte('\r')
		p.pos++
	case 'a':
		sb.WriteByte('\a')
		p.pos++
	case 'b':
		sb.WriteByte('\b')
		p.pos++
	case 'f':
		sb.WriteByte('\f')
		p.pos++
	case 'v':
		sb.WriteByte('\v')
		p.pos++
	case '\\', '\'', '"', '/':
		sb.WriteByte(ch)
		p.pos++
	case 'x':
		p.pos++
		r, err := p.hexRune(2)
		if err != nil {
			return err
		}
		sb.WriteRune(r)
	case 'u':
		p.pos++
		r, err := p.hexRune(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			r = p.lowSurrogate(r)
		}
		sb.WriteRune(r)
	case 'U':
		p.pos++
		r, err := p.hexRune(8)
		if err != nil {
			return err
		}
		if !utf8.ValidRune(r) {
			return p.errorf("invalid code point in \\U escape")
		}
		sb.WriteRune(r)
	default:
		if ch >= '0' && ch <= '7' {
			n := 0
			for i := 0; i < 3 && !p.eof() && p.peek() >= '0' && p.peek() <= '7'; i++ {
				n = n*8 + int(p.peek()-'0')
				p.pos++
			}
			sb.WriteRune(rune(n))
			return nil
		}
		// Unknown escapes keep the backslash.
		sb.WriteByte('\\')
		sb.WriteByte(ch)
		p.pos++
	}
	return nil
}

// lowSurrogate combines a high surrogate with a following \uXXXX low
// surrogate. An unpaired surrogate becomes the replacement character.
func (p *parser) lowSurrogate(high rune) rune {
	if p.pos+6 <= len(p.input) && p.input[p.pos] == '\\' && p.input[p.pos+1] == 'u' {
		save := p.pos
		p.pos += 2
		low, err := p.hexRune(4)
		if err == nil {
			if r := utf16.DecodeRune(high, low); r != utf8.RuneError {
				return r
			}
		}
		p.pos = save
	}
	return utf8.RuneError
}

func (p *parser) hexRune(digits int) (rune, error) {
	if p.pos+digits > len(p.input) {
		return 0, p.errorf("truncated escape sequence")
	}
	n, err := strconv.ParseUint(p.input[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid escape sequence %q", p.input[p.pos:p.pos+digits])
	}
	p.pos += digits
	return rune(n), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
