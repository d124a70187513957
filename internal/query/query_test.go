package query

import (
	"errors"
	"testing"
)

func TestValidatePlanAcceptsAllowedPrefixes(t *testing.T) {
	accepted := []string{
		"SELECT 1",
		"  select * from orders",
		"\nWITH t AS (SELECT 1) SELECT * FROM t",
		"show tables",
		"DESCRIBE customers",
		"Explain select 1",
		"selectgarbage that is not sql",
	}
	for _, sqlText := range accepted {
		if err := ValidatePlan(sqlText); err != nil {
			t.Fatalf("ValidatePlan(%q) error = %v", sqlText, err)
		}
	}
}

func TestValidatePlanRejectsOtherStatements(t *testing.T) {
	rejected := []string{
		"DROP TABLE x",
		"insert into t values (1)",
		"update t set a = 1",
		"-- comment\nSELECT 1",
		"(SELECT 1)",
	}
	for _, sqlText := range rejected {
		if err := ValidatePlan(sqlText); !errors.Is(err, ErrInvalidSQL) {
			t.Fatalf("ValidatePlan(%q) error = %v, want ErrInvalidSQL", sqlText, err)
		}
	}
}

func TestValidatePlanRejectsEmpty(t *testing.T) {
	for _, sqlText := range []string{"", "   ", "\t\n"} {
		if err := ValidatePlan(sqlText); !errors.Is(err, ErrEmptySQL) {
			t.Fatalf("ValidatePlan(%q) error = %v, want ErrEmptySQL", sqlText, err)
		}
	}
}

func TestCheckNotEmpty(t *testing.T) {
	if err := CheckNotEmpty(" \n "); !errors.Is(err, ErrEmptySQL) {
		t.Fatalf("CheckNotEmpty() error = %v", err)
	}
	if err := CheckNotEmpty("DROP TABLE x"); err != nil {
		t.Fatalf("CheckNotEmpty() error = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	rows := [][]any{{1}, {2}, {3}}
	cases := []struct {
		limit int
		want  int
	}{
		{limit: 500, want: 3},
		{limit: 3, want: 3},
		{limit: 2, want: 2},
		{limit: 1, want: 1},
		{limit: 0, want: 0},
		{limit: -1, want: 0},
		{limit: -10, want: 0},
	}
	for _, tc := range cases {
		got := Truncate(rows, tc.limit)
		if len(got) != tc.want {
			t.Fatalf("Truncate(limit=%d) len = %d, want %d", tc.limit, len(got), tc.want)
		}
		for i := range got {
			if got[i][0] != rows[i][0] {
				t.Fatalf("Truncate(limit=%d) row %d = %v", tc.limit, i, got[i])
			}
		}
	}
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Columns: []Column{{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "VARCHAR"}},
		Rows:    [][]any{{1, "a"}},
	}
	if result.RowCount() != 1 {
		t.Fatalf("RowCount() = %d", result.RowCount())
	}
	names := result.ColumnNames()
	if len(names) != 2 || names[0] != "id" || names[1] != "name" {
		t.Fatalf("ColumnNames() = %#v", names)
	}
}
