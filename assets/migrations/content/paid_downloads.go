// Package content holds the paid-publications migration unit: monetization
// columns on downloads, plus the purchase_history and gallery tables backing
// the publication shop and photo gallery endpoints.
package content

import (
	"github.com/mahasewa/ops/pkg/schema"
)

// PaidDownloadColumns are the columns added to the existing downloads table
// when publications became purchasable. All additive, all guarded.
func PaidDownloadColumns() []schema.Change {
	return []schema.Change{
		schema.AddColumn{Table: "downloads", Column: "subcategory", Type: "VARCHAR(100)"},
		schema.AddColumn{Table: "downloads", Column: "cover_image_url", Type: "VARCHAR(500)"},
		schema.AddColumn{Table: "downloads", Column: "is_free", Type: "BOOLEAN", Default: "TRUE", NotNull: true},
		schema.AddColumn{Table: "downloads", Column: "price", Type: "NUMERIC(10,2)", Default: "0"},
		schema.AddColumn{Table: "downloads", Column: "member_discount_percent", Type: "INTEGER", Default: "0"},
		schema.AddColumn{Table: "downloads", Column: "premium_discount_percent", Type: "INTEGER", Default: "0"},
		schema.AddColumn{Table: "downloads", Column: "access_level", Type: "VARCHAR(50)", Default: "'public'"},
		schema.AddColumn{Table: "downloads", Column: "requires_membership", Type: "BOOLEAN", Default: "FALSE"},
		schema.AddColumn{Table: "downloads", Column: "purchase_count", Type: "INTEGER", Default: "0"},
		schema.AddColumn{Table: "downloads", Column: "total_revenue", Type: "NUMERIC(10,2)", Default: "0"},
		schema.AddColumn{Table: "downloads", Column: "language", Type: "VARCHAR(10)", Default: "'en'"},
	}
}

func paidDownloadProbes() []schema.Probe {
	return []schema.Probe{
		schema.ColumnProbe{Table: "downloads", Column: "subcategory", WantType: "varchar"},
		schema.ColumnProbe{Table: "downloads", Column: "cover_image_url", WantType: "varchar"},
		schema.ColumnProbe{Table: "downloads", Column: "is_free", WantType: "boolean"},
		schema.ColumnProbe{Table: "downloads", Column: "price", WantType: "numeric"},
		schema.ColumnProbe{Table: "downloads", Column: "member_discount_percent", WantType: "integer"},
		schema.ColumnProbe{Table: "downloads", Column: "premium_discount_percent", WantType: "integer"},
		schema.ColumnProbe{Table: "downloads", Column: "access_level", WantType: "varchar"},
		schema.ColumnProbe{Table: "downloads", Column: "requires_membership", WantType: "boolean"},
		schema.ColumnProbe{Table: "downloads", Column: "purchase_count", WantType: "integer"},
		schema.ColumnProbe{Table: "downloads", Column: "total_revenue", WantType: "numeric"},
		schema.ColumnProbe{Table: "downloads", Column: "language", WantType: "varchar"},
	}
}
