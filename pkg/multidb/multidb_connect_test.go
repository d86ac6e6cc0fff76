package multidb

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSqlDbConnMaker(t *testing.T) {
	t.Parallel()

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()

		_, err := NewSqlDbConnMaker(SqlDbConnMakerConfig{})
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Parallel()

		_, err := NewSqlDbConnMaker(SqlDbConnMakerConfig{
			Config: DatabaseResources{
				"content": {Driver: Driver("oracle")},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not supported driver")
	})

	t.Run("label must be alphanumeric", func(t *testing.T) {
		t.Parallel()

		_, err := NewSqlDbConnMaker(SqlDbConnMakerConfig{
			Config: DatabaseResources{
				"content-db": {Driver: Sqlite},
			},
		})
		assert.Error(t, err)
	})
}

func TestSqlDbConnMakerGet(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "content.db")
	conns, err := NewSqlDbConnMaker(SqlDbConnMakerConfig{
		Config: DatabaseResources{
			"content":   {Driver: Sqlite, Sqlite: GoSqlDb{DSN: dsn}},
			"reporting": {Driver: Sqlite, Disable: true},
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, conns.Close())
	})

	t.Run("registered label", func(t *testing.T) {
		driver, err := conns.GetDriver("content")
		require.NoError(t, err)
		assert.Equal(t, Sqlite, driver)

		db, err := conns.GetSqlx(driver, "content")
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NoError(t, db.Ping())
	})

	t.Run("wrong driver for label", func(t *testing.T) {
		_, err := conns.GetSqlx(Postgres, "content")
		assert.Error(t, err)
	})

	t.Run("disabled label", func(t *testing.T) {
		_, err := conns.GetSqlx(Sqlite, "reporting")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disabled")
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := conns.GetDriver("analytics")
		assert.Error(t, err)
	})
}
