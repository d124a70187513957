// Package sample provides query engines that answer every request with a
// fixed table. The SQL text is never inspected.
package sample

import (
	"context"

	"github.com/enginemock/enginemock/internal/query"
)

type Table struct {
	Columns       []query.Column
	Rows          func() [][]any
	ExecutionTime string
}

type Engine struct {
	table Table
}

func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

// NewConnectorEngine answers with the three-row table of the connector API.
func NewConnectorEngine() *Engine {
	return NewEngine(ConnectorTable())
}

// NewPreviewEngine answers with the five-row table of the MDL preview API.
func NewPreviewEngine() *Engine {
	return NewEngine(PreviewTable())
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if err := ctx.Err(); err != nil {
		return query.Result{}, err
	}
	var rows [][]any
	if e.table.Rows != nil {
		rows = e.table.Rows()
	}
	columns := make([]query.Column, len(e.table.Columns))
	copy(columns, e.table.Columns)
	return query.Result{
		Columns:       columns,
		Rows:          query.Truncate(rows, request.RowLimit),
		ExecutionTime: e.table.ExecutionTime,
	}, nil
}

func ConnectorTable() Table {
	return Table{
		Columns: []query.Column{
			{Name: "id"},
			{Name: "name"},
			{Name: "value"},
			{Name: "created_at"},
		},
		Rows: func() [][]any {
			return [][]any{
				{1, "Sample Item 1", 100.50, "2023-10-28T10:00:00Z"},
				{2, "Sample Item 2", 250.75, "2023-10-28T11:00:00Z"},
				{3, "Sample Item 3", 75.25, "2023-10-28T12:00:00Z"},
			}
		},
		ExecutionTime: "0.045s",
	}
}

func PreviewTable() Table {
	return Table{
		Columns: []query.Column{
			{Name: "id", Type: "INTEGER"},
			{Name: "name", Type: "VARCHAR"},
			{Name: "value", Type: "DECIMAL"},
			{Name: "created_at", Type: "TIMESTAMP"},
		},
		Rows: func() [][]any {
			return [][]any{
				{1, "Sample Product A", 299.99, "2023-10-28T10:00:00Z"},
				{2, "Sample Product B", 149.50, "2023-10-28T11:00:00Z"},
				{3, "Sample Product C", 89.99, "2023-10-28T12:00:00Z"},
				{4, "Sample Product D", 199.99, "2023-10-28T13:00:00Z"},
				{5, "Sample Product E", 349.99, "2023-10-28T14:00:00Z"},
			}
		},
		ExecutionTime: "0.032s",
	}
}
