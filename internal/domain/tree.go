package domain

import "fmt"

// Walk visits root and its descendants depth-first, parents before
// children, passing each node with its parent (nil for root). Returning
// false from fn skips the node's children.
func Walk(root *NoteObject, fn func(n, parent *NoteObject) bool) {
	var visit func(n, parent *NoteObject)
	visit = func(n, parent *NoteObject) {
		if n == nil || !fn(n, parent) {
			return
		}
		for _, c := range n.Children {
			visit(c, n)
		}
	}
	visit(root, nil)
}

// Find returns the node with the given id, or nil.
func Find(root *NoteObject, id int) *NoteObject {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, c := range root.Children {
		if found := Find(c, id); found != nil {
			return found
		}
	}
	return nil
}

// FindWithParent returns the node with the given id together with the
// notebook that contains it. The parent is nil for the root.
func FindWithParent(root *NoteObject, id int) (node, parent *NoteObject) {
	Walk(root, func(n, p *NoteObject) bool {
		if node != nil {
			return false
		}
		if n.ID == id {
			node, parent = n, p
			return false
		}
		return true
	})
	return node, parent
}

// Validate checks the structural invariants of a full tree.
func Validate(root *NoteObject) error {
	if root == nil {
		return fmt.Errorf("%w: missing root", ErrInvalidTree)
	}
	if root.ID != RootID {
		return fmt.Errorf("%w: root has id %d, want %d", ErrInvalidTree, root.ID, RootID)
	}
	if !root.IsNotebook() {
		return fmt.Errorf("%w: root is a %s", ErrInvalidTree, root.Kind)
	}

	seen := make(map[int]bool)
	var err error
	Walk(root, func(n, _ *NoteObject) bool {
		if err != nil {
			return false
		}
		switch {
		case seen[n.ID]:
			err = fmt.Errorf("%w: duplicate id %d", ErrInvalidTree, n.ID)
		case n.Kind != KindNote && n.Kind != KindNotebook:
			err = fmt.Errorf("%w: id %d: %w", ErrInvalidTree, n.ID, ErrUnknownKind)
		case n.IsNote() && len(n.Children) > 0:
			err = fmt.Errorf("%w: note %d has children", ErrInvalidTree, n.ID)
		}
		seen[n.ID] = true
		return err == nil
	})
	return err
}

// Count returns the number of nodes in the tree.
func Count(root *NoteObject) int {
	total := 0
	Walk(root, func(*NoteObject, *NoteObject) bool {
		total++
		return true
	})
	return total
}

// Clone returns a deep copy of n.
func Clone(n *NoteObject) *NoteObject {
	if n == nil {
		return nil
	}
	out := &NoteObject{ID: n.ID, Kind: n.Kind, Title: n.Title, Content: n.Content}
	if n.Children != nil {
		out.Children = make([]*NoteObject, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = Clone(c)
		}
	}
	return out
}

// StripContent returns a copy of the tree with every note's content
// emptied, for listings that only need titles.
func StripContent(root *NoteObject) *NoteObject {
	out := Clone(root)
	Walk(out, func(n, _ *NoteObject) bool {
		n.Content = ""
		return true
	})
	return out
}

// Insert appends child to the notebook with id parentID.
func Insert(root *NoteObject, parentID int, child *NoteObject) error {
	parent := Find(root, parentID)
	if parent == nil {
		return fmt.Errorf("parent %d: %w", parentID, ErrNotFound)
	}
	if !parent.IsNotebook() {
		return fmt.Errorf("parent %d: %w", parentID, ErrNotNotebook)
	}
	parent.Children = append(parent.Children, child)
	return nil
}

// Remove detaches the node with the given id (and its subtree) from the
// tree and returns it.
func Remove(root *NoteObject, id int) (*NoteObject, error) {
	if id == RootID {
		return nil, ErrRootNotDeletable
	}
	node, parent := FindWithParent(root, id)
	if node == nil || parent == nil {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	parent.Children = kept
	return node, nil
}
