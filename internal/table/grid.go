// Package table implements the structural algebra of table elements: cells
// live in rows of variable length, and every row carries its own column
// widths as percentages of the table width.
package table

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"drawboard/internal/domain"
)

// Tolerance for percentage sums.
const Epsilon = 1e-6

// Cell is one slot of a row.
type Cell struct {
	Width float64 // percent of table width
	Data  string
	Color string
	Style domain.CellStyle
}

// Row is a horizontal band of cells.
type Row struct {
	Height float64 // percent of table height
	Cells  []Cell
}

// Grid is the explicit rows-of-cells form of a table element. The element's
// flat arrays are a row-major serialisation of it.
type Grid struct {
	Rows []Row
}

// FromElement expands el's flat arrays into a grid. Missing data, color, or
// style entries read as empty; missing row heights are shared equally.
func FromElement(el *domain.DrawElement) Grid {
	g := Grid{Rows: make([]Row, len(el.RowColWidths))}
	k := 0
	for r, widths := range el.RowColWidths {
		row := Row{Height: at(el.RowHeights, r, 100/float64(len(el.RowColWidths)))}
		row.Cells = make([]Cell, len(widths))
		for c, w := range widths {
			row.Cells[c] = Cell{
				Width: w,
				Data:  at(el.CellData, k, ""),
				Color: at(el.CellColors, k, ""),
				Style: at(el.CellStyles, k, domain.CellStyle{}),
			}
			k++
		}
		g.Rows[r] = row
	}
	return g
}

// Apply writes g back into el's flat arrays, recomputes rows and cols, and
// clears the legacy span field.
func (g Grid) Apply(el *domain.DrawElement) {
	n := g.CellCount()
	el.RowColWidths = make([][]float64, len(g.Rows))
	el.RowHeights = make([]float64, len(g.Rows))
	el.CellData = make([]string, 0, n)
	el.CellColors = make([]string, 0, n)
	el.CellStyles = make([]domain.CellStyle, 0, n)
	el.Cols = 0
	for r, row := range g.Rows {
		el.RowHeights[r] = row.Height
		widths := make([]float64, len(row.Cells))
		for c, cell := range row.Cells {
			widths[c] = cell.Width
			el.CellData = append(el.CellData, cell.Data)
			el.CellColors = append(el.CellColors, cell.Color)
			el.CellStyles = append(el.CellStyles, cell.Style)
		}
		el.RowColWidths[r] = widths
		if len(widths) > el.Cols {
			el.Cols = len(widths)
		}
	}
	el.Rows = len(g.Rows)
	el.CellSpans = nil
}

func (g Grid) CellCount() int {
	n := 0
	for _, row := range g.Rows {
		n += len(row.Cells)
	}
	return n
}

// Resolve maps a flat row-major index to its (row, column) position.
func (g Grid) Resolve(index int) (row, col int, ok bool) {
	if index < 0 {
		return 0, 0, false
	}
	for r, rw := range g.Rows {
		if index < len(rw.Cells) {
			return r, index, true
		}
		index -= len(rw.Cells)
	}
	return 0, 0, false
}

// Index is the inverse of Resolve.
func (g Grid) Index(row, col int) int {
	k := 0
	for r := 0; r < row; r++ {
		k += len(g.Rows[r].Cells)
	}
	return k + col
}

// Resolve maps a flat cell index of el to (row, column).
func Resolve(el *domain.DrawElement, index int) (row, col int, ok bool) {
	return FromElement(el).Resolve(index)
}

// Init gives el a rows × cols table with equal column widths and row
// heights and empty cells.
func Init(el *domain.DrawElement, rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	g := Grid{Rows: make([]Row, rows)}
	for r := range g.Rows {
		g.Rows[r] = Row{Height: 100 / float64(rows), Cells: make([]Cell, cols)}
		for c := range g.Rows[r].Cells {
			g.Rows[r].Cells[c].Width = 100 / float64(cols)
		}
	}
	el.Kind = domain.ElementTable
	g.Apply(el)
}

// Normalize rescales every row's widths and the row heights so each sums to
// 100, and pads the cell arrays to the slot count. Tables decoded from older
// clients can drift from either.
func Normalize(el *domain.DrawElement) {
	for _, widths := range el.RowColWidths {
		rescale(widths)
	}
	rescale(el.RowHeights)
	FromElement(el).Apply(el)
}

func rescale(v []float64) {
	sum := floats.Sum(v)
	if sum <= 0 {
		for i := range v {
			v[i] = 100 / float64(len(v))
		}
		return
	}
	if !scalar.EqualWithinAbs(sum, 100, Epsilon) {
		floats.Scale(100/sum, v)
	}
}

func at[T any](s []T, i int, def T) T {
	if i < len(s) {
		return s[i]
	}
	return def
}
