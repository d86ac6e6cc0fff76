package schema

// Dialect selects which SQL flavor DDL and catalog queries are rendered for.
// Values intentionally match database/sql driver names so a multidb label's
// driver can be used directly.
type Dialect string

func (d Dialect) String() string {
	return string(d)
}

const (
	DialectPostgres Dialect = "postgres"
	DialectMysql    Dialect = "mysql"
	DialectSqlite   Dialect = "sqlite3"
)
