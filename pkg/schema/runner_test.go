package schema

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	// one in-memory database per test, shared by every statement
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	return db
}

func testUnit() Unit {
	return Unit{
		Name: "test_unit",
		Changes: []Change{
			AddColumn{Table: "downloads", Column: "price", Type: "NUMERIC(10,2)", Default: "0"},
			AddColumn{Table: "downloads", Column: "is_free", Type: "BOOLEAN", Default: "TRUE", NotNull: true},
			CreateTable{
				Name:     "purchase_history",
				SerialPK: "id",
				Columns: []Column{
					{Name: "user_id", Type: "INTEGER", NotNull: true},
					{Name: "download_id", Type: "INTEGER", NotNull: true},
					{Name: "amount_paid", Type: "NUMERIC(10,2)", NotNull: true},
				},
				Unique: []string{"user_id", "download_id"},
			},
			CreateIndex{Table: "purchase_history", Name: "idx_purchase_history_user_id", Columns: []string{"user_id"}},
		},
		Probes: []Probe{
			ColumnProbe{Table: "downloads", Column: "price", WantType: "numeric"},
			TableProbe{Name: "purchase_history"},
			IndexProbe{Table: "purchase_history", Name: "idx_purchase_history_user_id"},
			CountProbe{Table: "purchase_history"},
		},
	}
}

func TestNewRunner(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		runner, err := NewRunner(RunnerConfig{DB: newTestDB(t), Dialect: DialectSqlite})
		require.NoError(t, err)
		assert.NotNil(t, runner)
	})

	t.Run("missing db", func(t *testing.T) {
		t.Parallel()

		_, err := NewRunner(RunnerConfig{Dialect: DialectSqlite})
		assert.Error(t, err)
	})

	t.Run("unknown dialect", func(t *testing.T) {
		t.Parallel()

		_, err := NewRunner(RunnerConfig{DB: newTestDB(t), Dialect: Dialect("oracle")})
		assert.Error(t, err)
	})
}

func TestRunnerIdempotence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE downloads (id INTEGER PRIMARY KEY AUTOINCREMENT, title VARCHAR(255))`)
	require.NoError(t, err)

	runner, err := NewRunner(RunnerConfig{DB: db, Dialect: DialectSqlite})
	require.NoError(t, err)

	t.Run("first run applies everything", func(t *testing.T) {
		report, err := runner.Run(ctx, testUnit())
		require.NoError(t, err)
		require.Len(t, report.Changes, 4)

		for _, change := range report.Changes {
			assert.Equal(t, StatusApplied, change.Status, change.Change)
		}

		assert.True(t, report.ProbesPassed())
		assert.Empty(t, report.Fatal)
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		report, err := runner.Run(ctx, testUnit())
		require.NoError(t, err)
		require.Len(t, report.Changes, 4)

		for _, change := range report.Changes {
			assert.Equal(t, StatusAlreadyPresent, change.Status, change.Change)
		}

		assert.True(t, report.ProbesPassed())
	})
}

func TestRunnerAbortsOnFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	// no downloads table: the first ADD COLUMN must fail and the
	// remaining changes must never run
	runner, err := NewRunner(RunnerConfig{DB: db, Dialect: DialectSqlite})
	require.NoError(t, err)

	report, err := runner.Run(ctx, testUnit())
	require.Error(t, err)

	require.Len(t, report.Changes, 1)
	assert.Equal(t, StatusFailed, report.Changes[0].Status)
	assert.NotEmpty(t, report.Changes[0].Error)
	assert.NotEmpty(t, report.Fatal)
	assert.Empty(t, report.Probes)

	// the failed run must not leave partial state behind the abort point
	var n int
	err = db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'purchase_history'`)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRunnerInvalidUnit(t *testing.T) {
	t.Parallel()

	runner, err := NewRunner(RunnerConfig{DB: newTestDB(t), Dialect: DialectSqlite})
	require.NoError(t, err)

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		unit := testUnit()
		unit.Name = ""

		_, err := runner.Run(context.Background(), unit)
		assert.Error(t, err)
	})

	t.Run("no changes", func(t *testing.T) {
		t.Parallel()

		_, err := runner.Run(context.Background(), Unit{Name: "empty"})
		assert.Error(t, err)
	})
}

func TestRunnerToleratesConcurrentDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE downloads (id INTEGER PRIMARY KEY AUTOINCREMENT)`)
	require.NoError(t, err)

	assert.True(t, isAlreadyExists(errorString("table purchase_history already exists")))
	assert.True(t, isAlreadyExists(errorString("duplicate column name: price")))
	assert.True(t, isAlreadyExists(errorString("Duplicate key name 'idx_purchase_history_user_id'")))
	assert.False(t, isAlreadyExists(errorString("no such table: downloads")))

	runner, err := NewRunner(RunnerConfig{DB: db, Dialect: DialectSqlite})
	require.NoError(t, err)

	report, err := runner.Run(ctx, Unit{
		Name: "single",
		Changes: []Change{
			AddColumn{Table: "downloads", Column: "language", Type: "VARCHAR(10)", Default: "'en'"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Changes, 1)
	assert.Equal(t, StatusApplied, report.Changes[0].Status)
}

func TestRunnerVerifyIsReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE downloads (id INTEGER PRIMARY KEY AUTOINCREMENT)`)
	require.NoError(t, err)

	runner, err := NewRunner(RunnerConfig{DB: db, Dialect: DialectSqlite})
	require.NoError(t, err)

	report, err := runner.Verify(ctx, testUnit())
	require.NoError(t, err)

	// nothing applied, so the probes observe the missing objects
	assert.Empty(t, report.Changes)
	require.Len(t, report.Probes, 4)
	assert.False(t, report.ProbesPassed())

	// verify must not have created anything
	var n int
	err = db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'purchase_history'`)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

type errorString string

func (e errorString) Error() string { return string(e) }
