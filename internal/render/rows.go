package render

import "github.com/freenote/freenote/internal/domain"

// Row is one visible line of the tree pane.
type Row struct {
	ID         int
	Kind       domain.Kind
	Title      string
	Depth      int
	Open       bool // notebooks only
	ChildCount int  // notebooks only
	Deletable  bool
}

// IsNotebook reports whether the row is a notebook.
func (r Row) IsNotebook() bool { return r.Kind == domain.KindNotebook }

// Rows flattens the tree into the rows a list view shows: the root, then
// children of every open notebook in server order. Children of closed
// notebooks are not emitted.
func Rows(root *domain.NoteObject, open OpenState) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *domain.NoteObject, depth int)
	walk = func(n *domain.NoteObject, depth int) {
		row := Row{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Depth:     depth,
			Deletable: n.ID != domain.RootID,
		}
		if n.IsNotebook() {
			row.ChildCount = len(n.Children)
			row.Open = open != nil && open.IsOpen(n.ID)
		}
		rows = append(rows, row)
		if row.Open {
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
	return rows
}

// IndexOf returns the position of id in rows, or -1.
func IndexOf(rows []Row, id int) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
