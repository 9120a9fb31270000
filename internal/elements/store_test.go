package elements

import (
	"testing"

	"drawboard/internal/domain"
	"drawboard/internal/geometry"
)

func seed(ids ...string) *Store {
	s := NewStore(nil)
	for _, id := range ids {
		el := New(domain.ElementRect, geometry.Box{W: 10, H: 10})
		el.ID = id
		s.Insert(el)
	}
	return s
}

func assertDense(t *testing.T, s *Store) {
	t.Helper()
	seen := map[int]bool{}
	for _, el := range s.Snapshot() {
		if el.ZIndex < 1 || el.ZIndex > s.Len() || seen[el.ZIndex] {
			t.Fatalf("z-order not dense: %v", ranks(s))
		}
		seen[el.ZIndex] = true
	}
}

func ranks(s *Store) map[string]int {
	out := map[string]int{}
	for _, el := range s.Snapshot() {
		out[el.ID] = el.ZIndex
	}
	return out
}

func assertOrder(t *testing.T, s *Store, want ...string) {
	t.Helper()
	got := s.IDs()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	assertDense(t, s)
}

func TestInsertAssignsTopRank(t *testing.T) {
	s := seed("a", "b")
	el := s.Insert(domain.DrawElement{ID: "c", ZIndex: 99})
	if el.ZIndex != 3 {
		t.Errorf("ZIndex = %d, want 3", el.ZIndex)
	}
	assertOrder(t, s, "a", "b", "c")
}

func TestDeleteRenumbers(t *testing.T) {
	s := seed("a", "b", "c", "d")
	removed := s.Delete([]string{"b", "missing", "d"})
	if len(removed) != 2 {
		t.Errorf("removed = %v", removed)
	}
	assertOrder(t, s, "a", "c")
	if r := ranks(s); r["a"] != 1 || r["c"] != 2 {
		t.Errorf("ranks = %v", r)
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		action ReorderAction
		want   []string
	}{
		{"front", []string{"a"}, BringToFront, []string{"b", "c", "d", "a"}},
		{"back", []string{"c"}, SendToBack, []string{"c", "a", "b", "d"}},
		{"forward", []string{"b"}, BringForward, []string{"a", "c", "b", "d"}},
		{"backward", []string{"c"}, SendBackward, []string{"a", "c", "b", "d"}},
		{"forward at top", []string{"d"}, BringForward, []string{"a", "b", "c", "d"}},
		{"backward at bottom", []string{"a"}, SendBackward, []string{"a", "b", "c", "d"}},
		{"front keeps relative order", []string{"a", "b"}, BringToFront, []string{"c", "d", "a", "b"}},
		{"back keeps relative order", []string{"c", "d"}, SendToBack, []string{"c", "d", "a", "b"}},
		{"forward pair", []string{"a", "b"}, BringForward, []string{"c", "a", "b", "d"}},
		{"backward pair", []string{"c", "d"}, SendBackward, []string{"a", "c", "d", "b"}},
		{"unknown id", []string{"zz"}, BringToFront, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seed("a", "b", "c", "d")
			s.Reorder(tt.ids, tt.action)
			assertOrder(t, s, tt.want...)
		})
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := NewStore(nil)
	el := s.Insert(NewTable(geometry.Box{W: 100, H: 100}, 1, 2))
	snap := s.Snapshot()

	_ = s.Update(el.ID, func(e *domain.DrawElement) {
		e.X = 50
		e.CellData[0] = "changed"
	})
	if snap[0].X != 0 || snap[0].CellData[0] != "" {
		t.Errorf("snapshot aliased live state: %+v", snap[0])
	}
	snap[0].RowColWidths[0][0] = 1
	if got, _ := s.Get(el.ID); got.RowColWidths[0][0] != 50 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	s := seed("a", "b")
	err := s.Update("a", func(e *domain.DrawElement) {
		e.ID = "hijack"
		e.ZIndex = 7
		e.Width = 99
	})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get("a")
	if !ok || got.ZIndex != 1 || got.Width != 99 {
		t.Errorf("got %+v", got)
	}
	if err := s.Update("nope", func(*domain.DrawElement) {}); err == nil {
		t.Error("expected ErrNotFound")
	}
}

func TestNewStoreNormalisesRanks(t *testing.T) {
	s := NewStore([]domain.DrawElement{
		{ID: "x", ZIndex: 10},
		{ID: "y", ZIndex: 3},
		{ID: "z", ZIndex: 3},
	})
	assertOrder(t, s, "y", "z", "x")
}

func TestHitTestPicksTopmost(t *testing.T) {
	s := NewStore(nil)
	a := New(domain.ElementRect, geometry.Box{X: 0, Y: 0, W: 100, H: 100})
	b := New(domain.ElementCircle, geometry.Box{X: 50, Y: 50, W: 100, H: 100})
	s.Insert(a)
	s.Insert(b)
	if id, ok := s.HitTest(75, 75); !ok || id != b.ID {
		t.Errorf("HitTest = %q, want top element", id)
	}
	if _, ok := s.HitTest(500, 500); ok {
		t.Error("expected miss on empty canvas")
	}
}

func TestParseReorderAction(t *testing.T) {
	if _, err := ParseReorderAction("sideways"); err == nil {
		t.Error("expected error")
	}
	if a, err := ParseReorderAction("front"); err != nil || a != BringToFront {
		t.Errorf("got %q, %v", a, err)
	}
}
