package expansion

import (
	"testing"

	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parentMap map[int]int

func (m parentMap) ParentOf(id int) (int, bool) {
	p, ok := m[id]
	return p, ok
}

func TestSet_Toggle(t *testing.T) {
	s := New()

	assert.True(t, s.Toggle(3))
	assert.True(t, s.IsOpen(3))
	assert.False(t, s.Toggle(3))
	assert.False(t, s.IsOpen(3))
}

func TestSet_NewSeedsIDs(t *testing.T) {
	s := New(domain.RootID, 4)

	assert.Equal(t, []int{0, 4}, s.IDs())
	assert.Equal(t, 2, s.Len())
}

func TestSet_OpenWithAncestors(t *testing.T) {
	s := New()
	parents := parentMap{5: 4, 4: 1, 1: 0}

	s.OpenWithAncestors(4, parents)

	assert.Equal(t, []int{0, 1, 4}, s.IDs())
	assert.False(t, s.IsOpen(5))
}

func TestSet_OpenWithAncestorsIsIdempotent(t *testing.T) {
	s := New()
	parents := parentMap{2: 1, 1: 0}

	s.OpenWithAncestors(2, parents)
	first := s.IDs()
	s.OpenWithAncestors(2, parents)

	assert.Equal(t, first, s.IDs())
}

func TestSet_OpenWithAncestorsUnknownID(t *testing.T) {
	s := New()

	s.OpenWithAncestors(42, parentMap{})
	s.OpenWithAncestors(43, nil)

	assert.Equal(t, []int{42, 43}, s.IDs())
}

func TestSet_OpenWithAncestorsStopsOnCycle(t *testing.T) {
	s := New()

	s.OpenWithAncestors(1, parentMap{1: 2, 2: 1})

	assert.Equal(t, []int{1, 2}, s.IDs())
}

func TestSet_OpenWithAncestorsFromTreeCache(t *testing.T) {
	c := tree.New()
	require.NoError(t, c.Load(domain.NewNotebook(domain.RootID, "Notes",
		domain.NewNotebook(1, "M", domain.NewNotebook(2, "N")),
	)))
	s := New()

	s.OpenWithAncestors(2, c)

	assert.True(t, s.IsOpen(2))
	assert.True(t, s.IsOpen(1))
	assert.True(t, s.IsOpen(domain.RootID))
}

func TestSet_ToggleKeepsOthers(t *testing.T) {
	s := New(1, 2)

	s.Toggle(1)

	assert.Equal(t, []int{2}, s.IDs())
}
