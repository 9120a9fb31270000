package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// sqlConnector introspects MySQL, Postgres, and SQLite.
type sqlConnector struct {
	driverName string
	db         *sql.DB
}

func newSQLConnector(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

func (c *sqlConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if c.driverName == "sqlite" {
		return c.introspectSQLite(ctx)
	}
	return c.introspectInfoSchema(ctx)
}

// introspectInfoSchema works for MySQL and Postgres via INFORMATION_SCHEMA.
func (c *sqlConnector) introspectInfoSchema(ctx context.Context) (*SchemaInfo, error) {
	tableQuery := `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`
	colQuery := `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	if c.driverName == "postgres" {
		tableQuery = `SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() ORDER BY table_name`
		colQuery = `SELECT column_name, data_type FROM information_schema.columns
		 WHERE table_name = $1 ORDER BY ordinal_position`
	}

	names, err := c.queryNames(ctx, tableQuery)
	if err != nil {
		return nil, err
	}
	schema := &SchemaInfo{}
	for _, tbl := range names {
		schema.Tables = append(schema.Tables, TableInfo{Name: tbl, Columns: c.columns(ctx, colQuery, tbl)})
	}
	return schema, nil
}

// introspectSQLite uses sqlite_master + PRAGMA table_info.
func (c *sqlConnector) introspectSQLite(ctx context.Context) (*SchemaInfo, error) {
	names, err := c.queryNames(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}

	schema := &SchemaInfo{}
	for _, tbl := range names {
		info := TableInfo{Name: tbl}
		rows, err := c.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?)`, tbl)
		if err == nil {
			for rows.Next() {
				var ci ColumnInfo
				if rows.Scan(&ci.Name, &ci.Type) == nil {
					info.Columns = append(info.Columns, ci)
				}
			}
			rows.Close()
		}
		schema.Tables = append(schema.Tables, info)
	}
	return schema, nil
}

func (c *sqlConnector) queryNames(ctx context.Context, query string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *sqlConnector) columns(ctx context.Context, query, table string) []ColumnInfo {
	rows, err := c.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var ci ColumnInfo
		if rows.Scan(&ci.Name, &ci.Type) == nil {
			cols = append(cols, ci)
		}
	}
	return cols
}

func (c *sqlConnector) Close() error {
	return c.db.Close()
}
