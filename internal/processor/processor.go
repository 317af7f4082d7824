// Package processor validates requested fields, accumulates extracted
// records in the relation, and executes the configured queries.
package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/topngx/topngx/internal/nginx"
	"github.com/topngx/topngx/internal/relation"
	"github.com/topngx/topngx/pkg/types"
)

// Processor owns the relation for one run. Process and Report are
// never called concurrently on the same instance.
type Processor struct {
	// Fields are the requested output fields, in column order.
	Fields []string

	queries []string
	store   *relation.Store
	log     *zap.SugaredLogger
}

// New validates the requested field names and creates the backing
// relation. A field that is neither a registered variable nor a
// reserved derived name fails with a field error before any input is
// read.
func New(fields, queries []string, logger *zap.Logger) (*Processor, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("processor: no fields requested: %w", types.ErrField)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	columns := make([]relation.Column, len(fields))
	for i, field := range fields {
		if !types.IsDerivedField(field) && !nginx.IsKnown(field) {
			return nil, fmt.Errorf("processor: %q is not an available field: %w", field, types.ErrField)
		}
		columns[i] = relation.Column{Name: field, Type: columnType(field)}
	}

	store, err := relation.New(columns)
	if err != nil {
		return nil, err
	}

	return &Processor{
		Fields:  fields,
		queries: queries,
		store:   store,
		log:     logger.Sugar(),
	}, nil
}

// columnType maps a requested field to its SQLite column type. Derived
// numeric fields are integer-typed; everything else follows the
// registry kind.
func columnType(field string) string {
	switch field {
	case types.FieldStatusType, types.FieldBytesSent:
		return "INTEGER"
	case types.FieldRequestPath:
		return "TEXT"
	}
	return nginx.Lookup(field).Kind.SQLType()
}

// Process inserts the extracted records into the relation.
func (p *Processor) Process(ctx context.Context, records []types.Record) error {
	return p.store.Insert(ctx, records)
}

// Report executes each configured query against the relation and
// returns the results in configuration order. A failing query aborts
// the report but leaves the relation untouched.
func (p *Processor) Report(ctx context.Context) ([]*relation.QueryResult, error) {
	results := make([]*relation.QueryResult, 0, len(p.queries))
	for _, query := range p.queries {
		p.log.Debugw("executing query", "sql", query)
		result, err := p.store.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// RowCount returns the number of rows accumulated so far.
func (p *Processor) RowCount() int64 {
	return p.store.RowCount()
}

// Close releases the backing relation.
func (p *Processor) Close() error {
	return p.store.Close()
}
