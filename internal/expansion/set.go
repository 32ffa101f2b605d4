// Package expansion tracks which notebooks are rendered open. The set is
// keyed by id so it survives tree reloads.
package expansion

import "sort"

// ParentResolver maps a node id to the id of its containing notebook.
// *tree.Cache satisfies it.
type ParentResolver interface {
	ParentOf(id int) (int, bool)
}

// Set is the collection of expanded notebook ids.
type Set struct {
	open map[int]struct{}
}

// New returns a set with the given ids already open.
func New(ids ...int) *Set {
	s := &Set{open: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.open[id] = struct{}{}
	}
	return s
}

// IsOpen reports whether id is expanded.
func (s *Set) IsOpen(id int) bool {
	_, ok := s.open[id]
	return ok
}

// Open expands id.
func (s *Set) Open(id int) {
	s.open[id] = struct{}{}
}

// Toggle flips id and returns its new state.
func (s *Set) Toggle(id int) bool {
	if s.IsOpen(id) {
		delete(s.open, id)
		return false
	}
	s.open[id] = struct{}{}
	return true
}

// OpenWithAncestors expands id and every notebook above it. Ancestry comes
// from parents, not from what is currently displayed, so it can be called
// with the parent id of an object that has not been fetched yet.
func (s *Set) OpenWithAncestors(id int, parents ParentResolver) {
	s.Open(id)
	if parents == nil {
		return
	}
	seen := map[int]bool{id: true}
	for {
		p, ok := parents.ParentOf(id)
		if !ok || seen[p] {
			return
		}
		s.Open(p)
		seen[p] = true
		id = p
	}
}

// IDs returns the open ids in ascending order.
func (s *Set) IDs() []int {
	ids := make([]int, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of open notebooks.
func (s *Set) Len() int { return len(s.open) }
