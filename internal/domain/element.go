package domain

import "encoding/json"

type ElementKind string

const (
	ElementRect   ElementKind = "rect"
	ElementCircle ElementKind = "circle"
	ElementText   ElementKind = "text"
	ElementTable  ElementKind = "table"
)

// Valid reports whether k is one of the known element variants.
func (k ElementKind) Valid() bool {
	switch k {
	case ElementRect, ElementCircle, ElementText, ElementTable:
		return true
	}
	return false
}

// Minimum edge length, in canvas pixels, that a resize may produce.
const (
	MinResizeSize      = 20.0
	MinImageResizeSize = 50.0
)

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

type VerticalAlign string

const (
	VerticalAlignTop    VerticalAlign = "top"
	VerticalAlignMiddle VerticalAlign = "middle"
	VerticalAlignBottom VerticalAlign = "bottom"
)

// CellStyle holds per-cell text formatting for table elements.
type CellStyle struct {
	Bold   bool      `json:"bold,omitempty"`
	Italic bool      `json:"italic,omitempty"`
	Align  TextAlign `json:"align,omitempty"`
}

// CellSpan is the legacy span record older clients wrote for merged cells.
// It is decoded and carried but never read.
type CellSpan struct {
	RowSpan int `json:"rowSpan"`
	ColSpan int `json:"colSpan"`
}

// DrawElement is one shape on a diagram canvas. Coordinates are canvas-local
// pixels; ZIndex is a dense 1-based rank within the owning element set.
type DrawElement struct {
	ID     string      `json:"id"`
	Kind   ElementKind `json:"kind"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	ZIndex int         `json:"zIndex"`

	FillColor     string  `json:"fillColor,omitempty"`
	FillOpacity   float64 `json:"fillOpacity"`
	StrokeColor   string  `json:"strokeColor,omitempty"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	StrokeWidth   float64 `json:"strokeWidth"`

	Text          string        `json:"text,omitempty"`
	FontSize      float64       `json:"fontSize,omitempty"`
	TextColor     string        `json:"textColor,omitempty"`
	TextAlign     TextAlign     `json:"textAlign,omitempty"`
	VerticalAlign VerticalAlign `json:"verticalAlign,omitempty"`

	Image         string   `json:"image,omitempty"` // data URL
	RelatedTables []string `json:"relatedTables,omitempty"`

	// Table extension, populated only when Kind == ElementTable.
	Rows         int          `json:"rows,omitempty"`
	Cols         int          `json:"cols,omitempty"`
	RowColWidths [][]float64  `json:"rowColWidths,omitempty"` // percent of Width per row
	RowHeights   []float64    `json:"rowHeights,omitempty"`   // percent of Height
	CellData     []string     `json:"cellData,omitempty"`
	CellColors   []string     `json:"cellColors,omitempty"`
	CellStyles   []CellStyle  `json:"cellStyles,omitempty"`
	CellSpans    [][]CellSpan `json:"cellSpans,omitempty"` // deprecated
}

// IsTable reports whether the element carries the table extension.
func (e *DrawElement) IsTable() bool { return e.Kind == ElementTable }

// MinSize is the smallest width or height a resize gesture may leave.
func (e *DrawElement) MinSize() float64 {
	if e.Image != "" {
		return MinImageResizeSize
	}
	return MinResizeSize
}

// CellCount is the number of flat cell slots described by RowColWidths.
func (e *DrawElement) CellCount() int {
	n := 0
	for _, row := range e.RowColWidths {
		n += len(row)
	}
	return n
}

// Clone returns a deep copy; the copy shares no slices with e.
func (e DrawElement) Clone() DrawElement {
	out := e
	out.RelatedTables = cloneSlice(e.RelatedTables)
	out.RowHeights = cloneSlice(e.RowHeights)
	out.CellData = cloneSlice(e.CellData)
	out.CellColors = cloneSlice(e.CellColors)
	out.CellStyles = cloneSlice(e.CellStyles)
	if e.RowColWidths != nil {
		out.RowColWidths = make([][]float64, len(e.RowColWidths))
		for i, row := range e.RowColWidths {
			out.RowColWidths[i] = cloneSlice(row)
		}
	}
	if e.CellSpans != nil {
		out.CellSpans = make([][]CellSpan, len(e.CellSpans))
		for i, row := range e.CellSpans {
			out.CellSpans[i] = cloneSlice(row)
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// CloneElements deep-copies an element slice.
func CloneElements(els []DrawElement) []DrawElement {
	if els == nil {
		return nil
	}
	out := make([]DrawElement, len(els))
	for i := range els {
		out[i] = els[i].Clone()
	}
	return out
}

// MarshalElements encodes an element set in its persisted form.
func MarshalElements(els []DrawElement) (string, error) {
	if els == nil {
		els = []DrawElement{}
	}
	data, err := json.Marshal(els)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalElements decodes a persisted element set. An empty string is an
// empty set.
func UnmarshalElements(s string) ([]DrawElement, error) {
	if s == "" {
		return []DrawElement{}, nil
	}
	var els []DrawElement
	if err := json.Unmarshal([]byte(s), &els); err != nil {
		return nil, err
	}
	return els, nil
}
