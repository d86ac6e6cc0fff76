package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Probe is a read-only query against catalog metadata used to confirm a
// migration's effect. Probes never mutate state; a failed probe is reported,
// it does not gate control flow.
type Probe interface {
	Describe() string
	Check(ctx context.Context, db *sqlx.DB, d Dialect) ProbeResult
}

type ProbeResult struct {
	Probe    string `json:"probe"`
	Passed   bool   `json:"passed"`
	Observed string `json:"observed,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ColumnProbe asserts a column exists; when WantType is set the catalog's
// declared type must also match after dialect normalization (e.g. postgres
// "character varying" and sqlite "VARCHAR(100)" both normalize to "varchar").
type ColumnProbe struct {
	Table    string
	Column   string
	WantType string
}

func (p ColumnProbe) Describe() string {
	return fmt.Sprintf("column %s.%s", p.Table, p.Column)
}

func (p ColumnProbe) Check(ctx context.Context, db *sqlx.DB, d Dialect) ProbeResult {
	res := ProbeResult{Probe: p.Describe()}

	if err := validIdentifier(p.Table, "table"); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := validIdentifier(p.Column, "column"); err != nil {
		res.Error = err.Error()
		return res
	}

	query, err := columnTypeQuery(d)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var declaredType, declaredDefault string
	err = db.QueryRowxContext(ctx, db.Rebind(query), p.Table, p.Column).Scan(&declaredType, &declaredDefault)
	if errors.Is(err, sql.ErrNoRows) {
		res.Observed = "column missing"
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Observed = fmt.Sprintf("type=%s default=%s", declaredType, declaredDefault)
	res.Passed = p.WantType == "" || normalizeType(declaredType) == strings.ToLower(p.WantType)
	return res
}

// normalizeType folds dialect-specific catalog type names into a portable
// vocabulary: varchar, text, integer, numeric, boolean, timestamp.
func normalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i > 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)

	switch t {
	case "character varying":
		return "varchar"
	case "timestamp without time zone", "timestamp with time zone", "datetime":
		return "timestamp"
	case "int", "int4", "bigint", "mediumint", "smallint":
		return "integer"
	case "decimal":
		return "numeric"
	case "tinyint", "bool":
		return "boolean"
	}

	return t
}

// TableProbe asserts a table is present exactly once.
type TableProbe struct {
	Name string
}

func (p TableProbe) Describe() string {
	return fmt.Sprintf("table %s", p.Name)
}

func (p TableProbe) Check(ctx context.Context, db *sqlx.DB, d Dialect) ProbeResult {
	res := ProbeResult{Probe: p.Describe()}

	if err := validIdentifier(p.Name, "table"); err != nil {
		res.Error = err.Error()
		return res
	}

	query, args, err := tableGuard(d, p.Name)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(query), args...); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Passed = n == 1
	res.Observed = fmt.Sprintf("catalog entries=%d", n)
	return res
}

// IndexProbe asserts a named index exists on a table.
type IndexProbe struct {
	Table string
	Name  string
}

func (p IndexProbe) Describe() string {
	return fmt.Sprintf("index %s on %s", p.Name, p.Table)
}

func (p IndexProbe) Check(ctx context.Context, db *sqlx.DB, d Dialect) ProbeResult {
	res := ProbeResult{Probe: p.Describe()}

	if err := validIdentifier(p.Table, "table"); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := validIdentifier(p.Name, "index"); err != nil {
		res.Error = err.Error()
		return res
	}

	query, args, err := indexGuard(d, p.Table, p.Name)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(query), args...); err != nil {
		res.Error = err.Error()
		return res
	}

	// MySQL statistics reports one row per indexed column
	res.Passed = n >= 1
	res.Observed = fmt.Sprintf("catalog entries=%d", n)
	return res
}

// CountProbe reports a row-count summary. It always passes unless the query
// itself errors; the count is informational.
type CountProbe struct {
	Table string
}

func (p CountProbe) Describe() string {
	return fmt.Sprintf("count %s", p.Table)
}

func (p CountProbe) Check(ctx context.Context, db *sqlx.DB, d Dialect) ProbeResult {
	res := ProbeResult{Probe: p.Describe()}

	if err := validIdentifier(p.Table, "table"); err != nil {
		res.Error = err.Error()
		return res
	}

	var n int64
	if err := db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", p.Table)); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Passed = true
	res.Observed = fmt.Sprintf("rows=%d", n)
	return res
}

var (
	_ Probe = ColumnProbe{}
	_ Probe = TableProbe{}
	_ Probe = IndexProbe{}
	_ Probe = CountProbe{}
)
