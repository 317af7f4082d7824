package types

import "errors"

// Error taxonomy. Fatal errors (format, pattern, field) surface before
// any input is consumed; store and query errors abort the current
// operation but leave the relation intact.
var (
	// ErrFormat is returned for an unresolvable or malformed format
	// identifier or template.
	ErrFormat = errors.New("invalid log format")

	// ErrPattern is returned when a resolved template fails to compile.
	// This indicates a registry or compiler defect, not a user error.
	ErrPattern = errors.New("pattern compilation failed")

	// ErrField is returned when a requested field name is neither a
	// registered variable nor a reserved derived name.
	ErrField = errors.New("unknown field")

	// ErrStore is returned when a record cannot be inserted into the
	// relation.
	ErrStore = errors.New("record store failed")

	// ErrQuery is returned when a built-in or custom query fails at
	// execution time.
	ErrQuery = errors.New("query failed")
)
