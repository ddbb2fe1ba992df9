// Package testing provides test utilities for query.
package testing

import (
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/query"
)

// TipsSchema creates the tips table used by Fixtures. It is written in
// the subset of DDL shared by SQLite, PostgreSQL, MariaDB and SQL Server.
const TipsSchema = `CREATE TABLE tips (
	id INTEGER PRIMARY KEY,
	total_bill REAL NOT NULL,
	tip REAL NOT NULL,
	smoker VARCHAR(8) NOT NULL,
	weekday VARCHAR(8) NOT NULL,
	meal VARCHAR(8) NOT NULL,
	party_size INTEGER NOT NULL
)`

// TipsRows seeds the tips table. One statement per row keeps it portable.
var TipsRows = []string{
	`INSERT INTO tips VALUES (1, 16.99, 1.01, 'No', 'Sun', 'Dinner', 2)`,
	`INSERT INTO tips VALUES (2, 10.34, 1.66, 'No', 'Sun', 'Dinner', 3)`,
	`INSERT INTO tips VALUES (3, 21.01, 3.50, 'No', 'Sun', 'Dinner', 3)`,
	`INSERT INTO tips VALUES (4, 23.68, 3.31, 'No', 'Sun', 'Dinner', 2)`,
	`INSERT INTO tips VALUES (5, 24.59, 3.61, 'No', 'Sun', 'Dinner', 4)`,
	`INSERT INTO tips VALUES (6, 8.77, 2.00, 'No', 'Sat', 'Dinner', 2)`,
	`INSERT INTO tips VALUES (7, 26.88, 3.12, 'Yes', 'Sat', 'Dinner', 4)`,
	`INSERT INTO tips VALUES (8, 15.04, 1.96, 'Yes', 'Thur', 'Lunch', 2)`,
	`INSERT INTO tips VALUES (9, 44.30, 2.50, 'Yes', 'Thur', 'Lunch', 3)`,
	`INSERT INTO tips VALUES (10, 10.07, 1.83, 'No', 'Fri', 'Lunch', 1)`,
}

// Fixture is a named query over the tips table.
type Fixture struct {
	New    func() *query.Query
	Name   string
	Rows   int  // rows returned against TipsRows
	NoTSQL bool // SQL Server rejects LIMIT/OFFSET and WITH inside a CTE body
	Strict bool // render with BuildStrict
}

// SQL builds a fresh query and renders it.
func (f Fixture) SQL() string {
	q := f.New()
	if f.Strict {
		return q.BuildStrict()
	}
	return q.Build()
}

// Fixtures returns queries covering every clause the builder renders.
func Fixtures() []Fixture {
	return []Fixture{
		{
			Name: "select_all",
			Rows: 10,
			New: func() *query.Query {
				return query.New("tips")
			},
		},
		{
			Name: "filtered",
			Rows: 7,
			New: func() *query.Query {
				return query.New("tips").
					Select("tip", "total_bill").
					Where("total_bill > 15")
			},
		},
		{
			Name: "and_or",
			Rows: 3,
			New: func() *query.Query {
				return query.New("tips").
					Where("tip < 3.5", "tip > 2").
					OrWhere("total_bill > 40")
			},
		},
		{
			Name:   "strict_or",
			Rows:   5,
			Strict: true,
			New: func() *query.Query {
				return query.New("tips").
					Where("tip > 3.4").
					OrWhere("party_size = 1", "total_bill > 40", "weekday = 'Sat' AND smoker = 'Yes'")
			},
		},
		{
			Name: "grouped",
			Rows: 4,
			New: func() *query.Query {
				return query.New("tips").
					GroupBy("weekday", "meal").
					Select("MAX(tip) AS tip_max", "MIN(tip) AS tip_min")
			},
		},
		{
			Name: "ordered",
			Rows: 4,
			New: func() *query.Query {
				return query.New("tips").
					OrderBy("tip", "total_bill").
					Select("smoker", "total_bill").
					Where("tip < 2")
			},
		},
		{
			Name: "cte",
			Rows: 5,
			New: func() *query.Query {
				big := query.New("tips").Where("total_bill > 20")
				return query.New("big_bills").
					CTE(big, "big_bills").
					Select("tip")
			},
		},
		{
			Name: "chained_ctes",
			Rows: 3,
			New: func() *query.Query {
				sunday := query.New("tips").Where("weekday = 'Sun'")
				generous := query.New("sunday").Where("tip > 3")
				return query.New("generous").
					CTE(sunday, "sunday").
					CTE(generous, "generous").
					Select("id", "tip")
			},
		},
		{
			Name:   "nested_cte",
			Rows:   2,
			NoTSQL: true,
			New: func() *query.Query {
				lunch := query.New("tips").Where("meal = 'Lunch'")
				smokers := query.New("lunch").
					CTE(lunch, "lunch").
					Where("smoker = 'Yes'")
				return query.New("smokers").
					CTE(smokers, "smokers").
					Select("id")
			},
		},
		{
			Name:   "paged",
			Rows:   3,
			NoTSQL: true,
			Strict: true,
			New: func() *query.Query {
				return query.New("tips").
					Select("id").
					OrderBy("id").
					Limit(3).
					Offset(2)
			},
		},
	}
}

// AssertSQL compares expected and actual SQL, reporting detailed differences.
func AssertSQL(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Errorf("SQL mismatch:\nExpected:\n%s\nActual:\n%s", expected, actual)
	}
}

// AssertContains checks that the SQL contains a fragment.
func AssertContains(t *testing.T, sql, fragment string) {
	t.Helper()
	if !strings.Contains(sql, fragment) {
		t.Errorf("Expected SQL to contain %q\nSQL:\n%s", fragment, sql)
	}
}

// AssertNotContains checks that the SQL does not contain a fragment.
func AssertNotContains(t *testing.T, sql, fragment string) {
	t.Helper()
	if strings.Contains(sql, fragment) {
		t.Errorf("Expected SQL not to contain %q\nSQL:\n%s", fragment, sql)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertErrorIs fails the test unless err wraps target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error %v but got nil", target)
	}
	if !errors.Is(err, target) {
		t.Errorf("Expected error %v, got: %v", target, err)
	}
}
