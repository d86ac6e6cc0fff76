package multidb

type Driver string

func (d Driver) String() string {
	return string(d)
}

const (
	Mysql    Driver = "mysql"
	Postgres Driver = "postgres"
	Sqlite   Driver = "sqlite3"
)

type GoSqlDb struct {
	Debug bool   `yaml:"debug"`
	DSN   string `yaml:"dsn"` // Data Source Name
}

type DatabaseResource struct {
	Disable bool   `yaml:"disable"`
	Driver  Driver `yaml:"driver"` // mysql, postgres, sqlite3

	// per driver configuration
	Mysql    GoSqlDb `yaml:"mysql"`
	Postgres GoSqlDb `yaml:"postgres"`
	Sqlite   GoSqlDb `yaml:"sqlite"`
}

// DatabaseResources maps a label (as referenced by migration.dbLabel) to one
// database resource.
type DatabaseResources map[string]DatabaseResource
