package content

import (
	"github.com/mahasewa/ops/pkg/schema"
)

// GalleryChanges create the gallery table for event and team photos imported
// by the gallery import scripts.
func GalleryChanges() []schema.Change {
	return []schema.Change{
		schema.CreateTable{
			Name:     "gallery",
			SerialPK: "id",
			Columns: []schema.Column{
				{Name: "title", Type: "VARCHAR(255)"},
				{Name: "description", Type: "TEXT"},
				{Name: "image_url", Type: "VARCHAR(500)", NotNull: true},
				{Name: "thumbnail_url", Type: "VARCHAR(500)"},
				{Name: "category", Type: "VARCHAR(100)"},
				{Name: "album", Type: "VARCHAR(100)"},
				{Name: "tags", Type: "TEXT"}, // JSON array, kept portable across dialects
				{Name: "event_date", Type: "TIMESTAMP"},
				{Name: "location", Type: "VARCHAR(255)"},
				{Name: "photographer", Type: "VARCHAR(255)"},
				{Name: "display_order", Type: "INTEGER", Default: "0"},
				{Name: "is_featured", Type: "BOOLEAN", Default: "FALSE"},
				{Name: "is_active", Type: "BOOLEAN", Default: "TRUE", NotNull: true},
				{Name: "view_count", Type: "INTEGER", Default: "0"},
				{Name: "created_at", Type: "TIMESTAMP"},
				{Name: "updated_at", Type: "TIMESTAMP"},
			},
		},
		schema.CreateIndex{Table: "gallery", Name: "idx_gallery_category", Columns: []string{"category"}},
		schema.CreateIndex{Table: "gallery", Name: "idx_gallery_album", Columns: []string{"album"}},
		schema.CreateIndex{Table: "gallery", Name: "idx_gallery_is_active", Columns: []string{"is_active"}},
		schema.CreateIndex{Table: "gallery", Name: "idx_gallery_is_featured", Columns: []string{"is_featured"}},
		schema.CreateIndex{Table: "gallery", Name: "idx_gallery_display_order", Columns: []string{"display_order"}},
	}
}

func galleryProbes() []schema.Probe {
	return []schema.Probe{
		schema.TableProbe{Name: "gallery"},
		schema.ColumnProbe{Table: "gallery", Column: "image_url", WantType: "varchar"},
		schema.ColumnProbe{Table: "gallery", Column: "display_order", WantType: "integer"},
		schema.IndexProbe{Table: "gallery", Name: "idx_gallery_category"},
		schema.IndexProbe{Table: "gallery", Name: "idx_gallery_album"},
		schema.IndexProbe{Table: "gallery", Name: "idx_gallery_is_active"},
		schema.IndexProbe{Table: "gallery", Name: "idx_gallery_is_featured"},
		schema.IndexProbe{Table: "gallery", Name: "idx_gallery_display_order"},
		schema.CountProbe{Table: "gallery"},
	}
}
