package schema

import "fmt"

// Catalog existence queries shared by change guards and verification probes.
// All use ? bindvars; callers rebind for the active driver.

func columnGuard(d Dialect, table, column string) (string, []interface{}, error) {
	switch d {
	case DialectPostgres:
		return `SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
			[]interface{}{table, column}, nil
	case DialectMysql:
		return `SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`,
			[]interface{}{table, column}, nil
	case DialectSqlite:
		return `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
			[]interface{}{table, column}, nil
	default:
		return "", nil, fmt.Errorf("unknown dialect '%s'", d)
	}
}

func tableGuard(d Dialect, table string) (string, []interface{}, error) {
	switch d {
	case DialectPostgres:
		return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
			[]interface{}{table}, nil
	case DialectMysql:
		return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
			[]interface{}{table}, nil
	case DialectSqlite:
		return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
			[]interface{}{table}, nil
	default:
		return "", nil, fmt.Errorf("unknown dialect '%s'", d)
	}
}

func indexGuard(d Dialect, table, index string) (string, []interface{}, error) {
	switch d {
	case DialectPostgres:
		return `SELECT COUNT(*) FROM pg_indexes WHERE schemaname = current_schema() AND indexname = ?`,
			[]interface{}{index}, nil
	case DialectMysql:
		// one row per indexed column, any row means the index exists
		return `SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
			[]interface{}{table, index}, nil
	case DialectSqlite:
		return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`,
			[]interface{}{index}, nil
	default:
		return "", nil, fmt.Errorf("unknown dialect '%s'", d)
	}
}

func columnTypeQuery(d Dialect) (string, error) {
	switch d {
	case DialectPostgres:
		return `SELECT data_type, COALESCE(column_default, '') FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`, nil
	case DialectMysql:
		return `SELECT data_type, COALESCE(column_default, '') FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?`, nil
	case DialectSqlite:
		return `SELECT type, COALESCE(dflt_value, '') FROM pragma_table_info(?) WHERE name = ?`, nil
	default:
		return "", fmt.Errorf("unknown dialect '%s'", d)
	}
}
