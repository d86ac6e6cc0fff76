package migration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahasewa/ops/config"
	"github.com/mahasewa/ops/internal/migration"
	"github.com/mahasewa/ops/pkg/multidb"
	"github.com/mahasewa/ops/pkg/schema"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "content.db")

	// seed the downloads table the column additions expect
	db, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE downloads (id INTEGER PRIMARY KEY AUTOINCREMENT, title VARCHAR(255))`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	return &config.Config{
		DatabaseResources: multidb.DatabaseResources{
			"content": {
				Driver: multidb.Sqlite,
				Sqlite: multidb.GoSqlDb{DSN: dsn},
			},
		},
		Migration: config.Migration{DBLabel: "Content"}, // label matching is case-insensitive
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conf := testConfig(t)

	first, err := migration.Run(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, "content_paid_publications", first.Unit)
	assert.Equal(t, schema.DialectSqlite, first.Dialect)
	assert.True(t, first.ProbesPassed(), "probes: %+v", first.Probes)

	for _, change := range first.Changes {
		assert.Equal(t, schema.StatusApplied, change.Status, change.Change)
	}

	second, err := migration.Run(ctx, conf)
	require.NoError(t, err)

	for _, change := range second.Changes {
		assert.Equal(t, schema.StatusAlreadyPresent, change.Status, change.Change)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conf := testConfig(t)

	// before migrating, probes must fail without mutating anything
	before, err := migration.Verify(ctx, conf)
	require.NoError(t, err)
	assert.Empty(t, before.Changes)
	assert.False(t, before.ProbesPassed())

	_, err = migration.Run(ctx, conf)
	require.NoError(t, err)

	after, err := migration.Verify(ctx, conf)
	require.NoError(t, err)
	assert.True(t, after.ProbesPassed(), "probes: %+v", after.Probes)
}

func TestRunUnknownLabel(t *testing.T) {
	t.Parallel()

	conf := testConfig(t)
	conf.Migration.DBLabel = "reporting"

	_, err := migration.Run(context.Background(), conf)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()

		script, err := migration.Render(testConfig(t))
		require.NoError(t, err)
		assert.Contains(t, script, "ALTER TABLE downloads ADD COLUMN subcategory VARCHAR(100);")
		assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS gallery")
	})

	t.Run("postgres", func(t *testing.T) {
		t.Parallel()

		conf := testConfig(t)
		resource := conf.DatabaseResources["content"]
		resource.Driver = multidb.Postgres
		conf.DatabaseResources["content"] = resource

		script, err := migration.Render(conf)
		require.NoError(t, err)
		assert.Contains(t, script, "ADD COLUMN IF NOT EXISTS subcategory")
	})

	t.Run("unknown label", func(t *testing.T) {
		t.Parallel()

		conf := testConfig(t)
		conf.Migration.DBLabel = "reporting"

		_, err := migration.Render(conf)
		assert.Error(t, err)
	})
}
