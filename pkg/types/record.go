// Package types provides core data types for topngx.
package types

// Kind classifies the value a log-format variable captures.
type Kind int

const (
	// KindString is a plain unquoted token.
	KindString Kind = iota

	// KindInteger is an unsigned decimal number.
	KindInteger

	// KindQuotedString is a token delimited by double quotes in the log line.
	KindQuotedString

	// KindIPAddress is an IPv4 or IPv6 address.
	KindIPAddress

	// KindTimestamp is a local or ISO 8601 time stamp.
	KindTimestamp

	// KindRaw is the permissive fallback for unknown variables.
	KindRaw
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindQuotedString:
		return "quoted_string"
	case KindIPAddress:
		return "ip_address"
	case KindTimestamp:
		return "timestamp"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// SQLType returns the SQLite column affinity used for values of this kind.
func (k Kind) SQLType() string {
	if k == KindInteger {
		return "INTEGER"
	}
	return "TEXT"
}

// Reserved derived field names. These are computed from captures rather
// than read directly, and are valid requested fields for any format.
const (
	FieldStatusType  = "status_type"
	FieldBytesSent   = "bytes_sent"
	FieldRequestPath = "request_path"
)

// IsDerivedField reports whether name is one of the reserved derived
// field names.
func IsDerivedField(name string) bool {
	switch name {
	case FieldStatusType, FieldBytesSent, FieldRequestPath:
		return true
	}
	return false
}

// DerivedFields returns the reserved derived field names in a stable order.
func DerivedFields() []string {
	return []string{FieldStatusType, FieldBytesSent, FieldRequestPath}
}

// Record is one extracted log line. Values are aligned with the
// requested field order for the run and are never mutated after
// extraction.
type Record struct {
	Values []interface{}
}
