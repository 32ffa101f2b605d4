package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freenote/freenote/internal/domain"
	"gopkg.in/yaml.v3"
)

// outlineNode is the YAML shape of a tree listing. Content is left out;
// listings only carry titles.
type outlineNode struct {
	ID    int           `yaml:"id"`
	Type  string        `yaml:"type"`
	Title string        `yaml:"title"`
	Notes []outlineNode `yaml:"notes,omitempty"`
}

func toOutline(n *domain.NoteObject) outlineNode {
	out := outlineNode{ID: n.ID, Type: string(n.Kind), Title: n.Title}
	for _, c := range n.Children {
		out.Notes = append(out.Notes, toOutline(c))
	}
	return out
}

// OutlineYAML encodes the tree as YAML.
func OutlineYAML(root *domain.NoteObject) (string, error) {
	if root == nil {
		return "", fmt.Errorf("empty tree")
	}
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(toOutline(root)); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	return b.String(), nil
}

// OutlineJSON encodes the tree in its wire format, indented.
func OutlineJSON(root *domain.NoteObject) (string, error) {
	if root == nil {
		return "", fmt.Errorf("empty tree")
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	return string(data) + "\n", nil
}

// NoteDetail renders a single note for `freenote show`.
func NoteDetail(n *domain.NoteObject) string {
	content := n.Content
	if strings.TrimSpace(content) == "" {
		content = Dim("(empty)")
	}
	return RenderBox(fmt.Sprintf("#%d %s", n.ID, n.Title), content)
}
