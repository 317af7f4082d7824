package processor

import (
	"fmt"
	"strings"

	"github.com/topngx/topngx/pkg/types"
)

// Options shape the default report query.
type Options struct {
	// GroupBy is the column the default report groups on.
	GroupBy string

	// Having is the minimum group count for a group to be reported.
	Having uint64

	// OrderBy is the column the default report orders on, descending.
	OrderBy string

	// Limit caps the number of result rows per query.
	Limit uint64
}

// AvgQuery builds the query for the avg subcommand: one row with the
// arithmetic mean of every requested field.
func AvgQuery(fields []string) string {
	selections := make([]string, len(fields))
	for i, field := range fields {
		selections[i] = fmt.Sprintf("AVG(%s)", field)
	}
	return fmt.Sprintf("SELECT %s FROM log", strings.Join(selections, ", "))
}

// SumQuery builds the query for the sum subcommand.
func SumQuery(fields []string) string {
	selections := make([]string, len(fields))
	for i, field := range fields {
		selections[i] = fmt.Sprintf("SUM(%s)", field)
	}
	return fmt.Sprintf("SELECT %s FROM log", strings.Join(selections, ", "))
}

// PrintQuery builds the query for the print subcommand: a
// duplicate-free projection of the requested fields.
func PrintQuery(fields []string) string {
	selections := strings.Join(fields, ", ")
	return fmt.Sprintf("SELECT %s FROM log GROUP BY %s", selections, selections)
}

// TopQueries builds one frequency query per requested field: the most
// frequent distinct values with their counts, capped at limit.
func TopQueries(fields []string, limit uint64) []string {
	queries := make([]string, len(fields))
	for i, field := range fields {
		queries[i] = fmt.Sprintf(
			"SELECT %s, COUNT(1) AS count FROM log GROUP BY %s ORDER BY count DESC LIMIT %d",
			field, field, limit,
		)
	}
	return queries
}

// DefaultQueries builds the fields and query for the default report:
// per-group request count, average bytes sent, and a status class
// breakdown, filtered by the having threshold and ordered descending by
// the order-by column.
func DefaultQueries(opts Options) ([]string, []string) {
	fields := []string{opts.GroupBy}
	if opts.GroupBy != types.FieldStatusType {
		fields = append(fields, types.FieldStatusType)
	}
	if opts.GroupBy != types.FieldBytesSent {
		fields = append(fields, types.FieldBytesSent)
	}

	query := fmt.Sprintf(
		"SELECT %s, COUNT(1) AS count, AVG(bytes_sent) AS avg_bytes_sent, "+
			"SUM(CASE WHEN status_type = 2 THEN 1 ELSE 0 END) AS '2xx', "+
			"SUM(CASE WHEN status_type = 3 THEN 1 ELSE 0 END) AS '3xx', "+
			"SUM(CASE WHEN status_type = 4 THEN 1 ELSE 0 END) AS '4xx', "+
			"SUM(CASE WHEN status_type = 5 THEN 1 ELSE 0 END) AS '5xx' "+
			"FROM log GROUP BY %s HAVING count >= %d ORDER BY %s DESC LIMIT %d",
		opts.GroupBy, opts.GroupBy, opts.Having, opts.OrderBy, opts.Limit,
	)

	return fields, []string{query}
}
