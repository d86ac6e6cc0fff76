package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the operation kind of one schema change.
type Kind string

const (
	KindAddColumn   Kind = "ADD_COLUMN"
	KindCreateTable Kind = "CREATE_TABLE"
	KindCreateIndex Kind = "CREATE_INDEX"
)

// Change is one atomic, additive alteration to a single table. Applying the
// same change twice must produce identical end state: the Guard query reports
// whether the object is already present, and the rendered DDL additionally
// uses IF NOT EXISTS where the dialect supports it.
type Change interface {
	Kind() Kind

	// Describe returns a short human-readable identifier, e.g. "downloads.price".
	Describe() string

	// Guard returns a COUNT query (with ? bindvars) over catalog metadata;
	// a result > 0 means the change is already applied.
	Guard(d Dialect) (query string, args []interface{}, err error)

	// DDL returns the guarded DDL statement for the dialect.
	DDL(d Dialect) (string, error)
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validIdentifier rejects identifiers that could smuggle SQL, since DDL cannot
// use bindvars for object names.
func validIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%s must start with a letter and contain only letters, numbers, and underscores (got: %s)", fieldName, name)
	}
	return nil
}

// AddColumn adds one column to an existing table. Type must be portable SQL
// (VARCHAR(n), TEXT, INTEGER, NUMERIC(p,s), BOOLEAN, TIMESTAMP) and Default a
// raw SQL literal.
type AddColumn struct {
	Table   string
	Column  string
	Type    string
	Default string
	NotNull bool
}

func (c AddColumn) Kind() Kind { return KindAddColumn }

func (c AddColumn) Describe() string {
	return fmt.Sprintf("%s.%s", c.Table, c.Column)
}

func (c AddColumn) Guard(d Dialect) (string, []interface{}, error) {
	if err := c.validate(); err != nil {
		return "", nil, err
	}

	return columnGuard(d, c.Table, c.Column)
}

func (c AddColumn) DDL(d Dialect) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	switch d {
	case DialectPostgres:
		// native guard, the catalog pre-check is then only a fast path
		fmt.Fprintf(&b, "ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", c.Table, c.Column, c.Type)
	case DialectMysql, DialectSqlite:
		fmt.Fprintf(&b, "ALTER TABLE %s ADD COLUMN %s %s", c.Table, c.Column, c.Type)
	default:
		return "", fmt.Errorf("unknown dialect '%s'", d)
	}

	if c.Default != "" {
		fmt.Fprintf(&b, " DEFAULT %s", c.Default)
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}

	return b.String(), nil
}

func (c AddColumn) validate() error {
	if err := validIdentifier(c.Table, "table"); err != nil {
		return err
	}
	if err := validIdentifier(c.Column, "column"); err != nil {
		return err
	}
	if c.Type == "" {
		return fmt.Errorf("column %s.%s has no type", c.Table, c.Column)
	}
	return nil
}

var _ Change = AddColumn{}

// Column is one column definition inside a CreateTable change.
type Column struct {
	Name    string
	Type    string
	Default string
	NotNull bool
}

// CreateTable creates a table when absent. SerialPK names the auto-increment
// integer primary key column; Unique, when set, adds one named composite
// unique constraint over the listed columns.
type CreateTable struct {
	Name     string
	SerialPK string
	Columns  []Column
	Unique   []string
}

func (c CreateTable) Kind() Kind { return KindCreateTable }

func (c CreateTable) Describe() string {
	return c.Name
}

func (c CreateTable) Guard(d Dialect) (string, []interface{}, error) {
	if err := validIdentifier(c.Name, "table"); err != nil {
		return "", nil, err
	}

	return tableGuard(d, c.Name)
}

func (c CreateTable) DDL(d Dialect) (string, error) {
	if err := validIdentifier(c.Name, "table"); err != nil {
		return "", err
	}
	if len(c.Columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", c.Name)
	}

	lines := make([]string, 0, len(c.Columns)+2)

	if c.SerialPK != "" {
		if err := validIdentifier(c.SerialPK, "primary key column"); err != nil {
			return "", err
		}

		switch d {
		case DialectPostgres:
			lines = append(lines, fmt.Sprintf("%s SERIAL PRIMARY KEY", c.SerialPK))
		case DialectMysql:
			lines = append(lines, fmt.Sprintf("%s INTEGER NOT NULL AUTO_INCREMENT PRIMARY KEY", c.SerialPK))
		case DialectSqlite:
			lines = append(lines, fmt.Sprintf("%s INTEGER PRIMARY KEY AUTOINCREMENT", c.SerialPK))
		default:
			return "", fmt.Errorf("unknown dialect '%s'", d)
		}
	}

	for _, col := range c.Columns {
		if err := validIdentifier(col.Name, "column"); err != nil {
			return "", err
		}
		if col.Type == "" {
			return "", fmt.Errorf("column %s.%s has no type", c.Name, col.Name)
		}

		line := fmt.Sprintf("%s %s", col.Name, col.Type)
		if col.Default != "" {
			line += fmt.Sprintf(" DEFAULT %s", col.Default)
		}
		if col.NotNull {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}

	if len(c.Unique) > 0 {
		for _, col := range c.Unique {
			if err := validIdentifier(col, "unique column"); err != nil {
				return "", err
			}
		}

		constraint := fmt.Sprintf("CONSTRAINT uq_%s_%s UNIQUE (%s)",
			c.Name, strings.Join(c.Unique, "_"), strings.Join(c.Unique, ", "))
		lines = append(lines, constraint)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", c.Name, strings.Join(lines, ",\n    ")), nil
}

var _ Change = CreateTable{}

// CreateIndex creates a named index when absent.
type CreateIndex struct {
	Table   string
	Name    string
	Columns []string
	Unique  bool
}

func (c CreateIndex) Kind() Kind { return KindCreateIndex }

func (c CreateIndex) Describe() string {
	return fmt.Sprintf("%s on %s", c.Name, c.Table)
}

func (c CreateIndex) Guard(d Dialect) (string, []interface{}, error) {
	if err := c.validate(); err != nil {
		return "", nil, err
	}

	return indexGuard(d, c.Table, c.Name)
}

func (c CreateIndex) DDL(d Dialect) (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}

	unique := ""
	if c.Unique {
		unique = "UNIQUE "
	}

	switch d {
	case DialectPostgres, DialectSqlite:
		return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
			unique, c.Name, c.Table, strings.Join(c.Columns, ", ")), nil
	case DialectMysql:
		// no IF NOT EXISTS on MySQL, the Guard pre-check carries the idempotence
		return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
			unique, c.Name, c.Table, strings.Join(c.Columns, ", ")), nil
	default:
		return "", fmt.Errorf("unknown dialect '%s'", d)
	}
}

func (c CreateIndex) validate() error {
	if err := validIdentifier(c.Table, "table"); err != nil {
		return err
	}
	if err := validIdentifier(c.Name, "index"); err != nil {
		return err
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("index %s has no columns", c.Name)
	}
	for _, col := range c.Columns {
		if err := validIdentifier(col, "index column"); err != nil {
			return err
		}
	}
	return nil
}

var _ Change = CreateIndex{}
