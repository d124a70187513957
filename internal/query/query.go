package query

import (
	"context"
	"errors"
	"strings"
)

// DefaultRowLimit applies when a request does not carry a limit.
const DefaultRowLimit = 500

var (
	ErrEmptySQL   = errors.New("empty SQL query")
	ErrInvalidSQL = errors.New("invalid SQL query")
)

var allowedPrefixes = []string{"select", "with", "show", "describe", "explain"}

type Column struct {
	Name string
	Type string
}

type Request struct {
	SQL      string
	RowLimit int
}

type Result struct {
	Columns       []Column
	Rows          [][]any
	ExecutionTime string
}

func (r Result) RowCount() int {
	return len(r.Rows)
}

func (r Result) ColumnNames() []string {
	names := make([]string, 0, len(r.Columns))
	for _, column := range r.Columns {
		names = append(names, column.Name)
	}
	return names
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// CheckNotEmpty rejects SQL that is empty after trimming whitespace.
func CheckNotEmpty(sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return ErrEmptySQL
	}
	return nil
}

// ValidatePlan is the dry-plan check. It only looks at the leading keyword,
// so any text starting with an allowed keyword passes.
func ValidatePlan(sqlText string) error {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	if normalized == "" {
		return ErrEmptySQL
	}
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return nil
		}
	}
	return ErrInvalidSQL
}

// Truncate returns at most limit rows. Negative limits yield no rows.
func Truncate(rows [][]any, limit int) [][]any {
	if limit < 0 {
		limit = 0
	}
	if limit >= len(rows) {
		return rows
	}
	return rows[:limit]
}
