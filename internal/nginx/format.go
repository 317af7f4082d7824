package nginx

import (
	"fmt"

	"github.com/topngx/topngx/pkg/types"
)

// Segment is one piece of a format template: either a run of literal
// text or a single variable reference.
type Segment struct {
	// Literal is the exact text for literal segments.
	Literal string

	// Variable is the variable name for variable segments. Empty for
	// literal segments.
	Variable string
}

// FormatTemplate is a resolved log-format template. Concatenating the
// segments in order reconstructs the template string.
type FormatTemplate struct {
	// Source is the template string the segments were parsed from.
	Source string

	// Segments holds the literal and variable segments in order.
	Segments []Segment
}

// Variables returns the variable names in order of first appearance.
func (t *FormatTemplate) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, seg := range t.Segments {
		if seg.Variable == "" || seen[seg.Variable] {
			continue
		}
		seen[seg.Variable] = true
		names = append(names, seg.Variable)
	}
	return names
}

// presets maps well-known format names to their NGINX log_format
// template strings.
var presets = map[string]string{
	"combined": `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent "$http_referer" "$http_user_agent"`,
	"common":   `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent`,
	"main":     `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent "$http_referer" "$http_user_agent" "$http_x_forwarded_for"`,
}

// PresetNames returns the names of the built-in log formats.
func PresetNames() []string {
	return []string{"combined", "common", "main"}
}

// Resolve maps a preset name or a raw template string to a
// FormatTemplate. A template must contain at least one variable token;
// an input that is neither a preset nor a parseable template returns a
// format error.
func Resolve(format string) (*FormatTemplate, error) {
	template := format
	if preset, ok := presets[format]; ok {
		template = preset
	}

	segments, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}

	hasVariable := false
	for _, seg := range segments {
		if seg.Variable != "" {
			hasVariable = true
			break
		}
	}
	if !hasVariable {
		return nil, fmt.Errorf("nginx: %q is not a known format or template: %w", format, types.ErrFormat)
	}

	return &FormatTemplate{Source: template, Segments: segments}, nil
}

// parseTemplate splits a template into literal and variable segments,
// preserving literal text exactly. Variables are written as $name or
// ${name}.
func parseTemplate(template string) ([]Segment, error) {
	var segments []Segment
	var literal []byte

	flushLiteral := func() {
		if len(literal) > 0 {
			segments = append(segments, Segment{Literal: string(literal)})
			literal = literal[:0]
		}
	}

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' {
			literal = append(literal, c)
			i++
			continue
		}

		if i+1 >= len(template) {
			return nil, fmt.Errorf("nginx: unterminated variable token at offset %d: %w", i, types.ErrFormat)
		}

		// Braced form: ${name}
		if template[i+1] == '{' {
			end := i + 2
			for end < len(template) && template[end] != '}' {
				end++
			}
			if end >= len(template) || end == i+2 {
				return nil, fmt.Errorf("nginx: unterminated variable token at offset %d: %w", i, types.ErrFormat)
			}
			name := template[i+2 : end]
			if !validVariableName(name) {
				return nil, fmt.Errorf("nginx: invalid variable name %q at offset %d: %w", name, i, types.ErrFormat)
			}
			flushLiteral()
			segments = append(segments, Segment{Variable: name})
			i = end + 1
			continue
		}

		// Bare form: $name
		end := i + 1
		for end < len(template) && isVariableChar(template[end]) {
			end++
		}
		if end == i+1 {
			return nil, fmt.Errorf("nginx: unterminated variable token at offset %d: %w", i, types.ErrFormat)
		}
		flushLiteral()
		segments = append(segments, Segment{Variable: template[i+1 : end]})
		i = end
	}

	flushLiteral()
	return segments, nil
}

func isVariableChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func validVariableName(name string) bool {
	for i := 0; i < len(name); i++ {
		if !isVariableChar(name[i]) {
			return false
		}
	}
	return len(name) > 0
}
