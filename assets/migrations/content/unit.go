package content

import (
	"github.com/mahasewa/ops/pkg/schema"
)

// Unit composes the full paid-publications migration: downloads monetization
// columns first, then the two new tables with their indexes. Column additions
// are independent of the new tables; ordering only matters within each table
// block (table before its indexes).
func Unit() schema.Unit {
	changes := make([]schema.Change, 0, 21)
	changes = append(changes, PaidDownloadColumns()...)
	changes = append(changes, PurchaseHistoryChanges()...)
	changes = append(changes, GalleryChanges()...)

	probes := make([]schema.Probe, 0, 30)
	probes = append(probes, paidDownloadProbes()...)
	probes = append(probes, purchaseHistoryProbes()...)
	probes = append(probes, galleryProbes()...)

	return schema.Unit{
		Name:    "content_paid_publications",
		Changes: changes,
		Probes:  probes,
	}
}
