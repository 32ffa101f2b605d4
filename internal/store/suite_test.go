package store_test

import (
	"context"
	"testing"

	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// runStoreSuite exercises the behaviour every Store must share.
func runStoreSuite(t *testing.T, open func(t *testing.T) store.Store) {
	ctx := context.Background()

	newUser := func(t *testing.T, s store.Store) string {
		t.Helper()
		id := "user-" + uuid.NewString()
		require.NoError(t, s.AddUser(ctx, id, id+"@example.com"))
		return id
	}

	t.Run("new user gets default tree", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)

		root, err := s.Tree(ctx, user)
		require.NoError(t, err)
		require.NoError(t, domain.Validate(root))
		assert.Equal(t, "Notes", root.Title)
		require.Len(t, root.Children, 1)
		assert.Equal(t, "My First Note", root.Children[0].Title)
		assert.Equal(t, "Hello, World!", root.Children[0].Content)
	})

	t.Run("duplicate user", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)

		err := s.AddUser(ctx, user, "other@example.com")
		assert.ErrorIs(t, err, store.ErrUserExists)
	})

	t.Run("ensure user is idempotent", func(t *testing.T) {
		s := open(t)
		user := "ensure-" + uuid.NewString()

		require.NoError(t, store.EnsureUser(ctx, s, user, ""))
		require.NoError(t, store.EnsureUser(ctx, s, user, ""))

		ok, err := s.UserExists(ctx, user)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := open(t)

		_, err := s.Tree(ctx, "nobody-"+uuid.NewString())
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		ok, err := s.UserExists(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("note lookup", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)

		n, err := s.Note(ctx, user, 1)
		require.NoError(t, err)
		assert.Equal(t, "Hello, World!", n.Content)

		_, err = s.Note(ctx, user, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("create allocates ids from two", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)

		first, err := s.Create(ctx, user, domain.RootID, domain.KindNotebook)
		require.NoError(t, err)
		second, err := s.Create(ctx, user, first, domain.KindNote)
		require.NoError(t, err)
		assert.Equal(t, 2, first)
		assert.Equal(t, 3, second)

		root, err := s.Tree(ctx, user)
		require.NoError(t, err)
		nb := domain.Find(root, first)
		require.NotNil(t, nb)
		assert.Equal(t, "New Notebook", nb.Title)
		require.Len(t, nb.Children, 1)
		assert.Equal(t, "New Note", nb.Children[0].Title)
		assert.Equal(t, "", nb.Children[0].Content)
	})

	t.Run("create rejects bad parents", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)

		_, err := s.Create(ctx, user, 1, domain.KindNote)
		assert.ErrorIs(t, err, domain.ErrNotNotebook)

		_, err = s.Create(ctx, user, 42, domain.KindNote)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = s.Create(ctx, user, 0, domain.Kind("folder"))
		assert.ErrorIs(t, err, domain.ErrUnknownKind)

		// Failed creates must not consume ids.
		id, err := s.Create(ctx, user, 0, domain.KindNote)
		require.NoError(t, err)
		assert.Equal(t, 2, id)
	})

	t.Run("modify", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)
		nb, err := s.Create(ctx, user, 0, domain.KindNotebook)
		require.NoError(t, err)

		require.NoError(t, s.Modify(ctx, user, 1, store.Patch{Title: strPtr("Renamed"), Content: strPtr("<p>new</p>")}))
		require.NoError(t, s.Modify(ctx, user, nb, store.Patch{Title: strPtr("Folder"), Content: strPtr("ignored")}))
		require.NoError(t, s.Modify(ctx, user, 1, store.Patch{Content: strPtr("<p>newer</p>")}))

		n, err := s.Note(ctx, user, 1)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", n.Title)
		assert.Equal(t, "<p>newer</p>", n.Content)

		folder, err := s.Note(ctx, user, nb)
		require.NoError(t, err)
		assert.Equal(t, "Folder", folder.Title)
		assert.Empty(t, folder.Content)

		assert.ErrorIs(t, s.Modify(ctx, user, 77, store.Patch{Title: strPtr("x")}), domain.ErrNotFound)
	})

	t.Run("delete is recursive and keeps root", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)
		nb, err := s.Create(ctx, user, 0, domain.KindNotebook)
		require.NoError(t, err)
		inner, err := s.Create(ctx, user, nb, domain.KindNote)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, user, nb))

		root, err := s.Tree(ctx, user)
		require.NoError(t, err)
		assert.Nil(t, domain.Find(root, nb))
		assert.Nil(t, domain.Find(root, inner))

		assert.ErrorIs(t, s.Delete(ctx, user, domain.RootID), domain.ErrRootNotDeletable)
		assert.ErrorIs(t, s.Delete(ctx, user, nb), domain.ErrNotFound)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		s := open(t)
		user := newUser(t, s)
		a, err := s.Create(ctx, user, 0, domain.KindNote)
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, user, a))

		b, err := s.Create(ctx, user, 0, domain.KindNote)
		require.NoError(t, err)
		assert.Greater(t, b, a)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := open(t)
		alice := newUser(t, s)
		bob := newUser(t, s)

		_, err := s.Create(ctx, alice, 0, domain.KindNote)
		require.NoError(t, err)

		root, err := s.Tree(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 2, domain.Count(root))
	})
}
