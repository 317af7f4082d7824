package nginx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/topngx/topngx/pkg/types"
)

// CompiledPattern is a format template compiled into a single anchored
// regular expression with one named capture group per variable.
type CompiledPattern struct {
	// Regexp matches one full log line.
	Regexp *regexp.Regexp

	// Names holds the capture group names in template order. When a
	// variable occurs more than once, only its first occurrence is
	// listed.
	Names []string
}

// Compile turns a resolved template into a compiled pattern. Literal
// segments are escaped so regexp metacharacters match verbatim. Go's
// regexp rejects duplicate group names, so occurrences of a variable
// after the first emit the same matching fragment without a capture
// group; the first occurrence wins, as in the original nginx parsers.
func Compile(template *FormatTemplate) (*CompiledPattern, error) {
	var b strings.Builder
	b.WriteByte('^')

	seen := make(map[string]bool)
	var names []string

	for _, seg := range template.Segments {
		if seg.Variable == "" {
			b.WriteString(regexp.QuoteMeta(seg.Literal))
			continue
		}

		spec := Lookup(seg.Variable)
		if seen[seg.Variable] {
			fmt.Fprintf(&b, "(?:%s)", spec.Pattern)
			continue
		}
		seen[seg.Variable] = true
		names = append(names, seg.Variable)
		fmt.Fprintf(&b, "(?P<%s>%s)", seg.Variable, spec.Pattern)
	}

	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("nginx: failed to compile %q: %v: %w", template.Source, err, types.ErrPattern)
	}

	return &CompiledPattern{Regexp: re, Names: names}, nil
}
