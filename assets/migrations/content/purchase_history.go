package content

import (
	"github.com/mahasewa/ops/pkg/schema"
)

// PurchaseHistoryChanges create the purchase_history table tracking paid
// download orders, with one row per (user, download) purchase.
func PurchaseHistoryChanges() []schema.Change {
	return []schema.Change{
		schema.CreateTable{
			Name:     "purchase_history",
			SerialPK: "id",
			Columns: []schema.Column{
				{Name: "user_id", Type: "INTEGER", NotNull: true},
				{Name: "download_id", Type: "INTEGER", NotNull: true},
				{Name: "amount_paid", Type: "NUMERIC(10,2)", NotNull: true},
				{Name: "currency", Type: "VARCHAR(3)", Default: "'INR'"},
				{Name: "payment_method", Type: "VARCHAR(50)"},
				{Name: "payment_id", Type: "VARCHAR(255)"},
				{Name: "payment_status", Type: "VARCHAR(50)", Default: "'pending'"},
				{Name: "invoice_number", Type: "VARCHAR(100)"},
				{Name: "receipt_url", Type: "VARCHAR(500)"},
				{Name: "access_granted_at", Type: "TIMESTAMP"},
				{Name: "expires_at", Type: "TIMESTAMP"}, // NULL means lifetime access
				{Name: "download_count", Type: "INTEGER", Default: "0"},
				{Name: "last_downloaded_at", Type: "TIMESTAMP"},
				{Name: "created_at", Type: "TIMESTAMP"},
				{Name: "updated_at", Type: "TIMESTAMP"},
			},
			Unique: []string{"user_id", "download_id"},
		},
		schema.CreateIndex{Table: "purchase_history", Name: "idx_purchase_history_user_id", Columns: []string{"user_id"}},
		schema.CreateIndex{Table: "purchase_history", Name: "idx_purchase_history_download_id", Columns: []string{"download_id"}},
		schema.CreateIndex{Table: "purchase_history", Name: "idx_purchase_history_payment_status", Columns: []string{"payment_status"}},
		schema.CreateIndex{Table: "purchase_history", Name: "idx_purchase_history_payment_id", Columns: []string{"payment_id"}},
	}
}

func purchaseHistoryProbes() []schema.Probe {
	return []schema.Probe{
		schema.TableProbe{Name: "purchase_history"},
		schema.ColumnProbe{Table: "purchase_history", Column: "amount_paid", WantType: "numeric"},
		schema.ColumnProbe{Table: "purchase_history", Column: "payment_status", WantType: "varchar"},
		schema.IndexProbe{Table: "purchase_history", Name: "idx_purchase_history_user_id"},
		schema.IndexProbe{Table: "purchase_history", Name: "idx_purchase_history_download_id"},
		schema.IndexProbe{Table: "purchase_history", Name: "idx_purchase_history_payment_status"},
		schema.IndexProbe{Table: "purchase_history", Name: "idx_purchase_history_payment_id"},
		schema.CountProbe{Table: "purchase_history"},
	}
}
