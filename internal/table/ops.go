package table

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"drawboard/internal/domain"
	"drawboard/internal/geometry"
)

// MinCellPercent is the smallest width or height a row/column resize may
// leave on either side of the dragged divider.
const MinCellPercent = 5.0

var ErrNotTable = errors.New("element is not a table")

// Split divides the cell at index into r rows × c columns. Column splits
// affect only the cell's own row; each extra row copies the target row's
// current widths. Out-of-range indices and a 1×1 split are no-ops.
func Split(el *domain.DrawElement, index, r, c int) bool {
	if r < 1 {
		r = 1
	}
	if c < 1 {
		c = 1
	}
	g := FromElement(el)
	row, col, ok := g.Resolve(index)
	if !ok || (r == 1 && c == 1) {
		return false
	}

	if c > 1 {
		target := g.Rows[row].Cells[col]
		parts := make([]Cell, c)
		parts[0] = target
		parts[0].Width = target.Width / float64(c)
		for i := 1; i < c; i++ {
			parts[i] = Cell{Width: target.Width / float64(c)}
		}
		cells := make([]Cell, 0, len(g.Rows[row].Cells)+c-1)
		cells = append(cells, g.Rows[row].Cells[:col]...)
		cells = append(cells, parts...)
		cells = append(cells, g.Rows[row].Cells[col+1:]...)
		g.Rows[row].Cells = cells
	}

	if r > 1 {
		h := g.Rows[row].Height / float64(r)
		g.Rows[row].Height = h
		extra := make([]Row, r-1)
		for i := range extra {
			extra[i] = Row{Height: h, Cells: make([]Cell, len(g.Rows[row].Cells))}
			for j, tc := range g.Rows[row].Cells {
				extra[i].Cells[j] = Cell{Width: tc.Width}
			}
		}
		rows := make([]Row, 0, len(g.Rows)+r-1)
		rows = append(rows, g.Rows[:row+1]...)
		rows = append(rows, extra...)
		rows = append(rows, g.Rows[row+1:]...)
		g.Rows = rows
	}

	g.Apply(el)
	return true
}

// Merge joins, within each row, the selected cells into the first of them.
// A row takes part only when two or more of its cells are selected and they
// are column-contiguous; the merged cell keeps the first cell's content and
// the summed width. Reports whether anything changed.
func Merge(el *domain.DrawElement, indices []int) bool {
	if len(indices) < 2 {
		return false
	}
	g := FromElement(el)

	byRow := map[int][]int{}
	seen := map[int]bool{}
	for _, idx := range indices {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		r, c, ok := g.Resolve(idx)
		if !ok {
			continue
		}
		byRow[r] = append(byRow[r], c)
	}

	merged := false
	for r, cols := range byRow {
		if len(cols) < 2 {
			continue
		}
		sort.Ints(cols)
		if !contiguous(cols) {
			continue
		}
		first, last := cols[0], cols[len(cols)-1]
		cells := g.Rows[r].Cells
		widths := make([]float64, 0, len(cols))
		for c := first; c <= last; c++ {
			widths = append(widths, cells[c].Width)
		}
		cells[first].Width = floats.Sum(widths)
		g.Rows[r].Cells = append(cells[:first+1], cells[last+1:]...)
		merged = true
	}
	if !merged {
		return false
	}
	g.Apply(el)
	return true
}

func contiguous(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != 1 {
			return false
		}
	}
	return true
}

// ResizeColumn moves the divider to the right of column col in row by
// deltaPx, measured against the widths the gesture started with. Both sides
// of the divider keep at least MinCellPercent.
func ResizeColumn(el *domain.DrawElement, row, col int, startWidths []float64, deltaPx float64) bool {
	if row < 0 || row >= len(el.RowColWidths) || col < 0 || col+1 >= len(startWidths) || el.Width <= 0 {
		return false
	}
	widths, ok := shiftDivider(startWidths, col, deltaPx/el.Width*100)
	if !ok {
		return false
	}
	el.RowColWidths[row] = widths
	return true
}

// ResizeRow moves the divider below row by deltaPx against the heights the
// gesture started with.
func ResizeRow(el *domain.DrawElement, row int, startHeights []float64, deltaPx float64) bool {
	if row < 0 || row+1 >= len(startHeights) || el.Height <= 0 {
		return false
	}
	heights, ok := shiftDivider(startHeights, row, deltaPx/el.Height*100)
	if !ok {
		return false
	}
	el.RowHeights = heights
	return true
}

func shiftDivider(start []float64, i int, d float64) ([]float64, bool) {
	lo := MinCellPercent - start[i]
	hi := start[i+1] - MinCellPercent
	if lo > hi {
		return nil, false
	}
	d = max(lo, min(hi, d))
	out := make([]float64, len(start))
	copy(out, start)
	out[i] += d
	out[i+1] -= d
	return out, true
}

// SetCellText replaces the text of one cell.
func SetCellText(el *domain.DrawElement, index int, text string) bool {
	if index < 0 || index >= el.CellCount() {
		return false
	}
	padCells(el)
	el.CellData[index] = text
	return true
}

// StyleCells sets the background color and/or text style of every cell in
// indices. A nil argument leaves that property alone. Returns the number of
// cells changed.
func StyleCells(el *domain.DrawElement, indices []int, color *string, style *domain.CellStyle) int {
	padCells(el)
	n := 0
	for _, idx := range indices {
		if idx < 0 || idx >= len(el.CellData) {
			continue
		}
		if color != nil {
			el.CellColors[idx] = *color
		}
		if style != nil {
			el.CellStyles[idx] = *style
		}
		n++
	}
	return n
}

func padCells(el *domain.DrawElement) {
	n := el.CellCount()
	for len(el.CellData) < n {
		el.CellData = append(el.CellData, "")
	}
	for len(el.CellColors) < n {
		el.CellColors = append(el.CellColors, "")
	}
	for len(el.CellStyles) < n {
		el.CellStyles = append(el.CellStyles, domain.CellStyle{})
	}
}

// CellBox returns the canvas rectangle of the cell at index.
func CellBox(el *domain.DrawElement, index int) (geometry.Box, bool) {
	g := FromElement(el)
	row, col, ok := g.Resolve(index)
	if !ok {
		return geometry.Box{}, false
	}
	y := el.Y
	for r := 0; r < row; r++ {
		y += g.Rows[r].Height / 100 * el.Height
	}
	x := el.X
	for c := 0; c < col; c++ {
		x += g.Rows[row].Cells[c].Width / 100 * el.Width
	}
	return geometry.Box{
		X: x,
		Y: y,
		W: g.Rows[row].Cells[col].Width / 100 * el.Width,
		H: g.Rows[row].Height / 100 * el.Height,
	}, true
}

// CellAt returns the flat index of the cell under canvas point (px, py).
func CellAt(el *domain.DrawElement, px, py float64) (int, bool) {
	n := el.CellCount()
	for i := 0; i < n; i++ {
		if b, ok := CellBox(el, i); ok && b.Contains(px, py) {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the structural invariants of a table element.
func Validate(el *domain.DrawElement) error {
	if !el.IsTable() {
		return ErrNotTable
	}
	if el.Rows != len(el.RowColWidths) {
		return fmt.Errorf("rows = %d, but %d width rows", el.Rows, len(el.RowColWidths))
	}
	if len(el.RowHeights) != len(el.RowColWidths) {
		return fmt.Errorf("%d row heights for %d rows", len(el.RowHeights), len(el.RowColWidths))
	}
	if !scalar.EqualWithinAbs(floats.Sum(el.RowHeights), 100, Epsilon) {
		return fmt.Errorf("row heights sum to %v", floats.Sum(el.RowHeights))
	}
	cols := 0
	for r, widths := range el.RowColWidths {
		if !scalar.EqualWithinAbs(floats.Sum(widths), 100, Epsilon) {
			return fmt.Errorf("row %d widths sum to %v", r, floats.Sum(widths))
		}
		cols = max(cols, len(widths))
	}
	if el.Cols != cols {
		return fmt.Errorf("cols = %d, widest row has %d", el.Cols, cols)
	}
	n := el.CellCount()
	if len(el.CellData) != n || len(el.CellColors) != n || len(el.CellStyles) != n {
		return fmt.Errorf("cell arrays %d/%d/%d for %d slots",
			len(el.CellData), len(el.CellColors), len(el.CellStyles), n)
	}
	return nil
}
