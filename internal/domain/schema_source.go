package domain

import "time"

// SchemaDriver represents where a related-tables catalog is read from.
type SchemaDriver string

const (
	SchemaDriverMySQL    SchemaDriver = "mysql"
	SchemaDriverPostgres SchemaDriver = "postgres"
	SchemaDriverMongoDB  SchemaDriver = "mongodb"
	SchemaDriverSQLite   SchemaDriver = "sqlite"
	SchemaDriverERFile   SchemaDriver = "erfile" // ER project JSON file
)

// SchemaSource holds the metadata for a schema a diagram can link its
// elements to. The password is stored separately in the SecretStore.
type SchemaSource struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Driver    SchemaDriver `json:"driver"`
	Host      string       `json:"host"` // hostname, or file path for sqlite/erfile
	Port      int          `json:"port"`
	Database  string       `json:"database"`
	Username  string       `json:"username"`
	SSLMode   string       `json:"sslMode"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsFile reports whether the source is read from a local path.
func (s *SchemaSource) IsFile() bool {
	return s.Driver == SchemaDriverSQLite || s.Driver == SchemaDriverERFile
}

type SchemaSourceStore interface {
	CreateSource(s *SchemaSource) error
	GetSource(id string) (*SchemaSource, error)
	ListSources() ([]SchemaSource, error)
	UpdateSource(s *SchemaSource) error
	DeleteSource(id string) error
}
