// Package render turns a note tree and its expansion state into
// displayable output. Every function here is pure: the same tree and
// expansion state always produce the same output, and nothing is mutated.
package render

import (
	"html"
	"strconv"
	"strings"

	"github.com/freenote/freenote/internal/domain"
)

// OpenState reports whether a notebook is expanded. *expansion.Set
// satisfies it.
type OpenState interface {
	IsOpen(id int) bool
}

// Affordance names carried in data-action attributes.
const (
	ActionSelect      = "select"
	ActionNewNote     = "new-note"
	ActionNewNotebook = "new-notebook"
	ActionDelete      = "delete"
)

// HTML renders the tree as nested list markup. Notebooks become
// <details> containers whose open attribute follows open; notes become
// selectable items. Every interactive element carries data-action and
// data-id so a handler can resolve the node without walking the tree.
func HTML(root *domain.NoteObject, open OpenState) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="notes">`)
	writeNode(&b, root, open)
	b.WriteString(`</ul>`)
	return b.String()
}

func writeNode(b *strings.Builder, n *domain.NoteObject, open OpenState) {
	id := strconv.Itoa(n.ID)
	title := html.EscapeString(n.Title)

	if n.IsNotebook() {
		b.WriteString(`<li class="notebook" data-id="` + id + `">`)
		b.WriteString(`<details data-id="` + id + `"`)
		if open != nil && open.IsOpen(n.ID) {
			b.WriteString(` open`)
		}
		b.WriteString(`><summary><span class="title">` + title + `</span>`)
		writeButton(b, ActionNewNote, id, "New note")
		writeButton(b, ActionNewNotebook, id, "New notebook")
		if n.ID != domain.RootID {
			writeButton(b, ActionDelete, id, "Delete")
		}
		b.WriteString(`</summary><ul>`)
		for _, c := range n.Children {
			writeNode(b, c, open)
		}
		b.WriteString(`</ul></details></li>`)
		return
	}

	b.WriteString(`<li class="note" data-id="` + id + `">`)
	b.WriteString(`<a class="title" data-action="` + ActionSelect + `" data-id="` + id + `">` + title + `</a>`)
	writeButton(b, ActionDelete, id, "Delete")
	b.WriteString(`</li>`)
}

func writeButton(b *strings.Builder, action, id, label string) {
	b.WriteString(`<button data-action="` + action + `" data-id="` + id + `">` + label + `</button>`)
}
