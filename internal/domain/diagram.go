package domain

import "time"

// Diagram is a persisted diagram node: one element set plus the identity it
// is broadcast under.
type Diagram struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ElementSetID   string        `json:"elementSetId"`
	SchemaSourceID string        `json:"schemaSourceId"`
	Elements       []DrawElement `json:"elements"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type DiagramStore interface {
	CreateDiagram(d *Diagram) error
	GetDiagram(id string) (*Diagram, error)
	ListDiagrams() ([]Diagram, error)
	UpdateDiagram(d *Diagram) error
	SaveElements(id string, elements []DrawElement) error
	DeleteDiagram(id string) error
}

// DiagramStamp is the cheap change fingerprint used by the diagram watcher.
type DiagramStamp struct {
	ID        string
	UpdatedAt time.Time
}
