// Package dbclient reads table and collection names out of external
// databases so diagram elements can be linked to them.
package dbclient

import (
	"context"
	"fmt"

	"drawboard/internal/domain"
)

// SchemaInfo lists the entities of a database.
type SchemaInfo struct {
	Tables []TableInfo `json:"tables"`
}

// Names returns the entity names in schema order.
func (s *SchemaInfo) Names() []string {
	out := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		out[i] = t.Name
	}
	return out
}

// TableInfo describes a table/collection.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns,omitempty"`
}

// ColumnInfo describes a column/field.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Connector is a read-only schema connection to an external database.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Introspect returns the database's tables and their columns.
	Introspect(ctx context.Context) (*SchemaInfo, error)

	Close() error
}

// NewConnector opens a Connector for src. The password comes from the
// SecretStore.
func NewConnector(src *domain.SchemaSource, password string) (Connector, error) {
	switch src.Driver {
	case domain.SchemaDriverSQLite:
		return newSQLiteConnector(src)
	case domain.SchemaDriverMySQL:
		return newSQLConnector("mysql", buildMySQLDSN(src, password))
	case domain.SchemaDriverPostgres:
		return newSQLConnector("postgres", buildPostgresDSN(src, password))
	case domain.SchemaDriverMongoDB:
		return newMongoConnector(src, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", src.Driver)
	}
}
