package schema

import (
	"fmt"
	"strings"
)

// Unit is an ordered batch of schema changes plus trailing verification
// probes, authored together. Changes apply in author order: column additions
// must precede index creations that reference them. A unit carries no version
// ledger; re-running it against a migrated schema is a no-op.
type Unit struct {
	Name    string   `validate:"required"`
	Changes []Change `validate:"required,min=1"`
	Probes  []Probe
}

// Render returns the unit's DDL script for a dialect without executing it.
func Render(unit Unit, d Dialect) (string, error) {
	statements := make([]string, 0, len(unit.Changes))
	for _, change := range unit.Changes {
		ddl, err := change.DDL(d)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", change.Describe(), err)
		}

		statements = append(statements, ddl+";")
	}

	return strings.Join(statements, "\n\n") + "\n", nil
}
