package multidb

import (
	"io"

	"github.com/jmoiron/sqlx"
)

type MultiDB interface {
	GetSqlx(driver Driver, key string) (*sqlx.DB, error)
	io.Closer
}
