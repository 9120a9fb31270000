package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drawboard/internal/domain"
)

// SchemaSourceStore manages schema source records in SQLite.
type SchemaSourceStore struct {
	db *DB
}

func NewSchemaSourceStore(db *DB) *SchemaSourceStore {
	return &SchemaSourceStore{db: db}
}

func (s *SchemaSourceStore) CreateSource(src *domain.SchemaSource) error {
	now := time.Now()
	src.CreatedAt = now
	src.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO schema_sources (id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.ID, src.Name, src.Driver, src.Host, src.Port, src.Database, src.Username, src.SSLMode, src.CreatedAt, src.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create schema source: %w", err)
	}
	return nil
}

func (s *SchemaSourceStore) GetSource(id string) (*domain.SchemaSource, error) {
	row := s.db.conn.QueryRow(
		`SELECT id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at
		 FROM schema_sources WHERE id = ?`, id,
	)
	src := &domain.SchemaSource{}
	err := row.Scan(&src.ID, &src.Name, &src.Driver, &src.Host, &src.Port, &src.Database, &src.Username, &src.SSLMode, &src.CreatedAt, &src.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("schema source %s: %w", id, ErrNotFound)
	}
	return src, err
}

func (s *SchemaSourceStore) ListSources() ([]domain.SchemaSource, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, name, driver, host, port, database_name, username, ssl_mode, created_at, updated_at
		 FROM schema_sources ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SchemaSource
	for rows.Next() {
		var src domain.SchemaSource
		if err := rows.Scan(&src.ID, &src.Name, &src.Driver, &src.Host, &src.Port, &src.Database, &src.Username, &src.SSLMode, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *SchemaSourceStore) UpdateSource(src *domain.SchemaSource) error {
	src.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE schema_sources SET name=?, driver=?, host=?, port=?, database_name=?, username=?, ssl_mode=?, updated_at=?
		 WHERE id=?`,
		src.Name, src.Driver, src.Host, src.Port, src.Database, src.Username, src.SSLMode, src.UpdatedAt, src.ID,
	)
	return checkAffected(res, err, "schema source", src.ID)
}

func (s *SchemaSourceStore) DeleteSource(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM schema_sources WHERE id = ?`, id)
	return err
}
