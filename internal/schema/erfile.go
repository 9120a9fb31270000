// Package schema provides the read-only related-tables catalog: the entity
// names of a diagram's linked schema, loaded from an external database or
// an ER project file.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"drawboard/internal/dbclient"
	"drawboard/internal/domain"
)

// ERProject is the on-disk shape of an entity-relationship project file.
type ERProject struct {
	Name     string     `json:"name"`
	Entities []EREntity `json:"entities"`
}

type EREntity struct {
	Name       string        `json:"name"`
	Attributes []ERAttribute `json:"attributes,omitempty"`
}

type ERAttribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ReadERFile parses an ER project file into a schema listing, sorted by
// entity name.
func ReadERFile(path string) (*dbclient.SchemaInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read er file: %w", err)
	}
	var proj ERProject
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse er file %s: %w", path, err)
	}

	info := &dbclient.SchemaInfo{}
	for _, e := range proj.Entities {
		if e.Name == "" {
			continue
		}
		t := dbclient.TableInfo{Name: e.Name}
		for _, a := range e.Attributes {
			t.Columns = append(t.Columns, dbclient.ColumnInfo{Name: a.Name, Type: a.Type})
		}
		info.Tables = append(info.Tables, t)
	}
	sort.Slice(info.Tables, func(i, j int) bool { return info.Tables[i].Name < info.Tables[j].Name })
	return info, nil
}

// Load reads the schema of src, opening and closing a database connection
// when src is not a file.
func Load(ctx context.Context, src *domain.SchemaSource, password string) (*dbclient.SchemaInfo, error) {
	if src.Driver == domain.SchemaDriverERFile {
		return ReadERFile(src.Host)
	}
	conn, err := dbclient.NewConnector(src, password)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.Introspect(ctx)
}
