package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drawboard/internal/domain"
)

// DiagramStore implements domain.DiagramStore using SQLite. Elements are
// kept as one JSON document per diagram.
type DiagramStore struct {
	db *DB
}

func NewDiagramStore(db *DB) *DiagramStore {
	return &DiagramStore{db: db}
}

const diagramColumns = `id, name, element_set_id, schema_source_id, elements_json, created_at, updated_at`

func (s *DiagramStore) CreateDiagram(d *domain.Diagram) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	elementsJSON, err := domain.MarshalElements(d.Elements)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO diagrams (`+diagramColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.ElementSetID, d.SchemaSourceID, elementsJSON, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create diagram: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiagram(row rowScanner) (*domain.Diagram, error) {
	d := &domain.Diagram{}
	var elementsJSON string
	if err := row.Scan(&d.ID, &d.Name, &d.ElementSetID, &d.SchemaSourceID, &elementsJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	els, err := domain.UnmarshalElements(elementsJSON)
	if err != nil {
		return nil, fmt.Errorf("diagram %s: %w", d.ID, err)
	}
	d.Elements = els
	return d, nil
}

func (s *DiagramStore) GetDiagram(id string) (*domain.Diagram, error) {
	d, err := scanDiagram(s.db.conn.QueryRow(`SELECT `+diagramColumns+` FROM diagrams WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diagram %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return d, nil
}

// GetByElementSet looks a diagram up by the element set it owns.
func (s *DiagramStore) GetByElementSet(setID string) (*domain.Diagram, error) {
	d, err := scanDiagram(s.db.conn.QueryRow(`SELECT `+diagramColumns+` FROM diagrams WHERE element_set_id = ?`, setID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("element set %s: %w", setID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get diagram by element set: %w", err)
	}
	return d, nil
}

func (s *DiagramStore) ListDiagrams() ([]domain.Diagram, error) {
	rows, err := s.db.conn.Query(`SELECT ` + diagramColumns + ` FROM diagrams ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Diagram
	for rows.Next() {
		d, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateDiagram saves the metadata of d. Elements are written by SaveElements.
func (s *DiagramStore) UpdateDiagram(d *domain.Diagram) error {
	d.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE diagrams SET name = ?, schema_source_id = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.SchemaSourceID, d.UpdatedAt, d.ID,
	)
	return checkAffected(res, err, "diagram", d.ID)
}

func (s *DiagramStore) SaveElements(id string, elements []domain.DrawElement) error {
	elementsJSON, err := domain.MarshalElements(elements)
	if err != nil {
		return err
	}
	res, err := s.db.conn.Exec(
		`UPDATE diagrams SET elements_json = ?, updated_at = ? WHERE id = ?`,
		elementsJSON, time.Now(), id,
	)
	return checkAffected(res, err, "diagram", id)
}

func (s *DiagramStore) DeleteDiagram(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM diagrams WHERE id = ?`, id)
	return err
}

// Stamps lists the change fingerprint of every diagram.
func (s *DiagramStore) Stamps() ([]domain.DiagramStamp, error) {
	rows, err := s.db.conn.Query(`SELECT id, updated_at FROM diagrams`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DiagramStamp
	for rows.Next() {
		var st domain.DiagramStamp
		if err := rows.Scan(&st.ID, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func checkAffected(res sql.Result, err error, kind, id string) error {
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
