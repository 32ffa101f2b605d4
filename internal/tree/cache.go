// Package tree holds the client's in-memory mirror of the server's note
// tree. The cache is replaced wholesale on every fetch; the only mutation
// applied between fetches is a title patch for the note being edited.
package tree

import (
	"fmt"

	"github.com/freenote/freenote/internal/domain"
)

// Cache mirrors the last full tree fetched from the server.
type Cache struct {
	root    *domain.NoteObject
	parents map[int]int // child id -> containing notebook id
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{parents: map[int]int{}}
}

// Load validates root and replaces the cached tree with it. On error the
// previous tree stays in place. The cache takes ownership of root.
func (c *Cache) Load(root *domain.NoteObject) error {
	if err := domain.Validate(root); err != nil {
		return fmt.Errorf("loading tree: %w", err)
	}
	parents := make(map[int]int)
	domain.Walk(root, func(n, parent *domain.NoteObject) bool {
		if parent != nil {
			parents[n.ID] = parent.ID
		}
		return true
	})
	c.root = root
	c.parents = parents
	return nil
}

// Loaded reports whether a tree has been loaded.
func (c *Cache) Loaded() bool { return c.root != nil }

// Root returns the cached root notebook, or nil before the first load.
func (c *Cache) Root() *domain.NoteObject { return c.root }

// Len returns the number of cached nodes.
func (c *Cache) Len() int { return domain.Count(c.root) }

// FindByID searches the cached tree depth-first.
func (c *Cache) FindByID(id int) (*domain.NoteObject, bool) {
	n := domain.Find(c.root, id)
	return n, n != nil
}

// UpdateTitle patches the title of a cached node in place. Unknown ids
// are ignored.
func (c *Cache) UpdateTitle(id int, title string) {
	if n, ok := c.FindByID(id); ok {
		n.Title = title
	}
}

// ParentOf returns the id of the notebook containing id. The root and
// unknown ids have no parent.
func (c *Cache) ParentOf(id int) (int, bool) {
	p, ok := c.parents[id]
	return p, ok
}

// Ancestors returns the containing notebooks of id, nearest first, ending
// with the root.
func (c *Cache) Ancestors(id int) []int {
	var out []int
	seen := map[int]bool{id: true}
	for {
		p, ok := c.parents[id]
		if !ok || seen[p] {
			return out
		}
		out = append(out, p)
		seen[p] = true
		id = p
	}
}
