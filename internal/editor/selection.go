package editor

import "slices"

// Selection is the set of selected element ids, plus the selected cells of
// the table in cell-edit mode. Order is selection order.
type Selection struct {
	ids       []string
	cellTable string
	cells     []int
}

func (s *Selection) IDs() []string { return slices.Clone(s.ids) }

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Has(id string) bool { return slices.Contains(s.ids, id) }

// Click applies a click on element id: a plain click on an unselected
// element replaces the selection, a shift-click toggles membership.
func (s *Selection) Click(id string, shift bool) {
	if shift {
		s.Toggle(id)
		return
	}
	if !s.Has(id) {
		s.Set([]string{id})
	}
}

func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		if id == s.cellTable {
			s.ExitCellEdit()
		}
		return
	}
	s.ids = append(s.ids, id)
}

// Set replaces the selection with ids, dropping duplicates.
func (s *Selection) Set(ids []string) {
	s.ids = s.ids[:0:0]
	for _, id := range ids {
		if !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
	if s.cellTable != "" && !s.Has(s.cellTable) {
		s.ExitCellEdit()
	}
}

// Clear empties the selection and leaves cell-edit mode.
func (s *Selection) Clear() {
	s.ids = nil
	s.ExitCellEdit()
}

// Remove drops ids, e.g. after they were deleted.
func (s *Selection) Remove(ids []string) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return slices.Contains(ids, id) })
	if slices.Contains(ids, s.cellTable) {
		s.ExitCellEdit()
	}
}

// EnterCellEdit puts table id in cell-edit mode with no cells selected.
func (s *Selection) EnterCellEdit(id string) {
	s.Set([]string{id})
	s.cellTable = id
	s.cells = nil
}

func (s *Selection) ExitCellEdit() {
	s.cellTable = ""
	s.cells = nil
}

// CellTable returns the table in cell-edit mode, if any.
func (s *Selection) CellTable() (string, bool) {
	return s.cellTable, s.cellTable != ""
}

func (s *Selection) Cells() []int { return slices.Clone(s.cells) }

// ClickCell selects a cell; shift toggles it in the current cell selection.
func (s *Selection) ClickCell(index int, shift bool) {
	if !shift {
		s.cells = []int{index}
		return
	}
	if i := slices.Index(s.cells, index); i >= 0 {
		s.cells = slices.Delete(s.cells, i, i+1)
		return
	}
	s.cells = append(s.cells, index)
}

func (s *Selection) SetCells(indices []int) {
	s.cells = s.cells[:0:0]
	for _, idx := range indices {
		if !slices.Contains(s.cells, idx) {
			s.cells = append(s.cells, idx)
		}
	}
}
