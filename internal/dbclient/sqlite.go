package dbclient

import (
	"drawboard/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteConnector opens an external SQLite file read-only.
func newSQLiteConnector(src *domain.SchemaSource) (*sqlConnector, error) {
	dsn := "file:" + src.Host + "?mode=ro"
	return newSQLConnector("sqlite", dsn)
}
