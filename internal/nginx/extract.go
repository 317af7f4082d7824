package nginx

import (
	"strconv"

	"github.com/topngx/topngx/pkg/types"
)

// Extract applies the compiled pattern to one log line and produces a
// typed record for the requested fields. The boolean return is false
// when the line does not match; non-matching lines are skipped, never
// errors.
//
// Derived fields are computed from captures:
//
//	status_type  — status / 100, 0 when missing or unparseable
//	bytes_sent   — body_bytes_sent as uint32, 0 when missing or unparseable
//	request_path — request_uri when captured, else the full request line
//
// Any other requested field reads the identically-named capture and
// falls back to the empty string when the pattern does not define it.
func Extract(line string, pattern *CompiledPattern, fields []string) (types.Record, bool) {
	match := pattern.Regexp.FindStringSubmatch(line)
	if match == nil {
		return types.Record{}, false
	}

	captures := make(map[string]string, len(pattern.Names))
	for i, name := range pattern.Regexp.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		captures[name] = match[i]
	}

	values := make([]interface{}, len(fields))
	for i, field := range fields {
		switch field {
		case types.FieldStatusType:
			values[i] = statusType(captures["status"])
		case types.FieldBytesSent:
			values[i] = bytesSent(captures["body_bytes_sent"])
		case types.FieldRequestPath:
			if uri, ok := captures["request_uri"]; ok {
				values[i] = uri
			} else {
				values[i] = captures["request"]
			}
		default:
			values[i] = captures[field]
		}
	}

	return types.Record{Values: values}, true
}

// statusType reduces an HTTP status to its class (2 for 2xx and so on).
// Untrusted input: anything unparseable becomes 0 rather than an error.
func statusType(status string) int64 {
	n, err := strconv.ParseUint(status, 10, 16)
	if err != nil {
		return 0
	}
	return int64(n / 100)
}

// bytesSent parses body_bytes_sent as an unsigned 32-bit integer,
// falling back to 0 for missing or garbled values.
func bytesSent(raw string) int64 {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return int64(n)
}
