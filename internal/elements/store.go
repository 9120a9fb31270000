// Package elements owns the ordered element set of a single diagram and keeps
// its z-order dense.
package elements

import (
	"errors"
	"fmt"
	"sort"

	"drawboard/internal/domain"
)

var ErrNotFound = errors.New("element not found")

// ReorderAction moves elements through the z-order.
type ReorderAction string

const (
	BringToFront ReorderAction = "front"
	SendToBack   ReorderAction = "back"
	BringForward ReorderAction = "forward"
	SendBackward ReorderAction = "backward"
)

func ParseReorderAction(s string) (ReorderAction, error) {
	switch a := ReorderAction(s); a {
	case BringToFront, SendToBack, BringForward, SendBackward:
		return a, nil
	}
	return "", fmt.Errorf("unknown reorder action %q", s)
}

// Store is the live element set of one diagram. Ranks are always 1..N.
// A Store is not safe for concurrent use.
type Store struct {
	items []domain.DrawElement
}

// NewStore builds a store from a persisted element set, renumbering ranks
// densely in their current order.
func NewStore(els []domain.DrawElement) *Store {
	s := &Store{}
	s.Replace(els)
	return s
}

// Replace swaps the whole set for els.
func (s *Store) Replace(els []domain.DrawElement) {
	s.items = domain.CloneElements(els)
	if s.items == nil {
		s.items = []domain.DrawElement{}
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].ZIndex < s.items[j].ZIndex
	})
	s.renumber()
}

func (s *Store) Len() int { return len(s.items) }

// Snapshot returns an immutable deep copy of the set, ordered by rank.
func (s *Store) Snapshot() []domain.DrawElement {
	return domain.CloneElements(s.items)
}

// IDs lists element ids bottom to top.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.items))
	for i, el := range s.items {
		ids[i] = el.ID
	}
	return ids
}

// Get returns a copy of the element with id.
func (s *Store) Get(id string) (domain.DrawElement, bool) {
	i := s.index(id)
	if i < 0 {
		return domain.DrawElement{}, false
	}
	return s.items[i].Clone(), true
}

// Insert appends el on top of every existing element.
func (s *Store) Insert(el domain.DrawElement) domain.DrawElement {
	el = el.Clone()
	el.ZIndex = len(s.items) + 1
	s.items = append(s.items, el)
	return el.Clone()
}

// Update applies fn to the element with id. The element's id and rank are
// restored after fn runs.
func (s *Store) Update(id string, fn func(el *domain.DrawElement)) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	el := s.items[i].Clone()
	fn(&el)
	el.ID = s.items[i].ID
	el.ZIndex = s.items[i].ZIndex
	s.items[i] = el
	return nil
}

// Delete removes every element in ids and returns the ids actually removed.
func (s *Store) Delete(ids []string) []string {
	drop := toSet(ids)
	var removed []string
	kept := s.items[:0:0]
	for _, el := range s.items {
		if _, ok := drop[el.ID]; ok {
			removed = append(removed, el.ID)
			continue
		}
		kept = append(kept, el)
	}
	s.items = kept
	s.renumber()
	return removed
}

// Reorder moves each element in ids, in rank order, then renumbers.
// Forward and backward swap with the immediate neighbour and do nothing at
// the top or bottom.
func (s *Store) Reorder(ids []string, action ReorderAction) {
	targets := toSet(ids)
	if len(targets) == 0 {
		return
	}

	// Process targets in rank order so multi-element moves keep their
	// relative stacking.
	ordered := make([]string, 0, len(targets))
	for _, el := range s.items {
		if _, ok := targets[el.ID]; ok {
			ordered = append(ordered, el.ID)
		}
	}
	if action == BringForward || action == SendToBack {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	for _, id := range ordered {
		i := s.index(id)
		switch action {
		case BringToFront:
			el := s.items[i]
			s.items = append(append(s.items[:i:i], s.items[i+1:]...), el)
		case SendToBack:
			el := s.items[i]
			rest := append(s.items[:i:i], s.items[i+1:]...)
			s.items = append([]domain.DrawElement{el}, rest...)
		case BringForward:
			if i < len(s.items)-1 {
				if _, blocked := targets[s.items[i+1].ID]; !blocked {
					s.items[i], s.items[i+1] = s.items[i+1], s.items[i]
				}
			}
		case SendBackward:
			if i > 0 {
				if _, blocked := targets[s.items[i-1].ID]; !blocked {
					s.items[i], s.items[i-1] = s.items[i-1], s.items[i]
				}
			}
		}
	}
	s.renumber()
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) renumber() {
	for i := range s.items {
		s.items[i].ZIndex = i + 1
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
