package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/freenote/freenote/internal/api"
	"github.com/freenote/freenote/internal/cli/formatter"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/expansion"
	"github.com/freenote/freenote/internal/render"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatHTML = "html"
)

func newTreeCmd(app *App) *cobra.Command {
	var (
		format    string
		expandAll bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the note tree",
		Long: heredoc.Doc(`
			Print the note tree. Only titles are fetched.

			The text and html formats show notebooks the way the editor first
			opens them (only the root expanded) unless --expand-all is given.
			The json and yaml formats always include the whole tree.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := app.Gateway.TreeOutline(cmd.Context())
			if err != nil {
				return err
			}
			out, err := formatTree(root, format, expandAll)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml or html")
	cmd.Flags().BoolVarP(&expandAll, "expand-all", "a", false, "expand every notebook")

	return cmd
}

func formatTree(root *domain.NoteObject, format string, expandAll bool) (string, error) {
	open := expansion.New(domain.RootID)
	if expandAll {
		domain.Walk(root, func(n, _ *domain.NoteObject) bool {
			if n.IsNotebook() {
				open.Open(n.ID)
			}
			return true
		})
	}

	switch strings.ToLower(format) {
	case formatText:
		return formatter.RenderTree(formatter.ItemsFromRows(render.Rows(root, open))), nil
	case formatJSON:
		return formatter.OutlineJSON(root)
	case formatYAML:
		return formatter.OutlineYAML(root)
	case formatHTML:
		return render.HTML(root, open) + "\n", nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml or html)", format)
	}
}

func newShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			note, err := app.Gateway.Note(cmd.Context(), id)
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), note.Content)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.NoteDetail(note))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print only the content")

	return cmd
}

func newNewCmd(app *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "new PARENT",
		Short: "Create a note or notebook inside notebook PARENT",
		Example: heredoc.Doc(`
			freenote new 0
			freenote new 0 --type notebook
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := parseID(args[0])
			if err != nil {
				return err
			}
			k, err := domain.ParseKind(kind)
			if err != nil {
				return err
			}
			id, err := app.Gateway.CreateNoteObject(cmd.Context(), parent, k)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Created %s #%d in #%d", k, id, parent)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(domain.KindNote), "note or notebook")

	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a note, or a notebook and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if id == domain.RootID {
				return domain.ErrRootNotDeletable
			}
			if err := app.Gateway.DeleteNoteObject(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Deleted #%d", id)))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title or content of a note",
		Long: heredoc.Doc(`
			Change the title or content of a note. Fields that are not given keep
			their current value. Pass --content - to read the content from stdin.
			Notebooks only have a title.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			titleSet := cmd.Flags().Changed("title")
			contentSet := cmd.Flags().Changed("content")
			if !titleSet && !contentSet {
				return fmt.Errorf("nothing to change: pass --title or --content")
			}

			current, err := app.Gateway.Note(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := api.ModifyRequest{ID: id, Title: current.Title, Content: current.Content}
			if titleSet {
				req.Title = title
			}
			if contentSet {
				if current.IsNotebook() {
					return fmt.Errorf("#%d is a notebook and has no content", id)
				}
				if content == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("reading content: %w", err)
					}
					content = string(data)
				}
				req.Content = content
			}

			if err := app.Gateway.ModifyNote(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Saved #%d", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", `new content ("-" reads stdin)`)

	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
