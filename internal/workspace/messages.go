package workspace

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/session"
)

// Messages produced by workspace commands. Each carries enough identity
// (sequence numbers, snapshots) for Update to recognise stale responses.

type treeLoadedMsg struct {
	seq  int
	root *domain.NoteObject
	err  error
}

type noteFetchedMsg struct {
	id   int
	seq  int
	note *domain.NoteObject
	err  error
}

type savedMsg struct {
	snap session.Snapshot
	err  error
}

type createdMsg struct {
	parent int
	kind   domain.Kind
	id     int
	err    error
}

type deletedMsg struct {
	id  int
	err error
}

type statusExpiredMsg struct {
	seq int
}

// inOrder runs cmds one after another in a single goroutine and then
// hands their messages back as a batch. Unlike tea.Batch, the second
// request is not started until the first has completed.
func inOrder(cmds ...tea.Cmd) tea.Cmd {
	var live []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			live = append(live, c)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func() tea.Msg {
		out := make(tea.BatchMsg, 0, len(live))
		for _, c := range live {
			msg := c()
			out = append(out, func() tea.Msg { return msg })
		}
		return out
	}
}
