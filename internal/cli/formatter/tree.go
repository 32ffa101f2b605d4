package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/freenote/freenote/internal/render"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title    string
	ID       int
	Level    int
	IsLast   bool
	Notebook bool
	Open     bool
	Detail   string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// ItemsFromRows converts visible tree rows into display items. A row is
// the last of its siblings when no later row shares its depth before the
// listing climbs back above it.
func ItemsFromRows(rows []render.Row) []TreeItem {
	items := make([]TreeItem, len(rows))
	for i, r := range rows {
		item := TreeItem{
			Title:    r.Title,
			ID:       r.ID,
			Level:    r.Depth,
			IsLast:   true,
			Notebook: r.IsNotebook(),
			Open:     r.Open,
		}
		for _, next := range rows[i+1:] {
			if next.Depth < r.Depth {
				break
			}
			if next.Depth == r.Depth {
				item.IsLast = false
				break
			}
		}
		if r.IsNotebook() && !r.Open && r.ChildCount > 0 {
			item.Detail = plural(r.ChildCount, "item")
		}
		items[i] = item
	}
	return items
}

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Notebooks get a ▾/▸ prefix
// depending on whether they are open, and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// Pass 1: build each line's content and track max visible width.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		label := item.Title
		marker := "  "
		if item.Notebook {
			label = StyleYellowBold.Render(item.Title)
			if item.Open {
				marker = StyleYellow.Render("▾ ")
			} else {
				marker = StyleYellow.Render("▸ ")
			}
		}

		content := prefix + marker + StyleDim.Render(fmt.Sprintf("#%d ", item.ID)) + label
		lines[idx].content = content

		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	// Pass 2: render with right-aligned badges.
	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
