package testutil

import (
	"github.com/freenote/freenote/internal/domain"
	"github.com/freenote/freenote/internal/store"
)

// DefaultTree is the tree a new user starts with.
func DefaultTree() *domain.NoteObject { return store.DefaultTree() }

// SampleTree returns:
//
//	0 Notes
//	├── 1 Work
//	│   ├── 2 Plan
//	│   └── 3 Archive
//	│       └── 4 Old
//	└── 5 Inbox
func SampleTree() *domain.NoteObject {
	return domain.NewNotebook(domain.RootID, "Notes",
		domain.NewNotebook(1, "Work",
			domain.NewNote(2, "Plan", "<p>plan</p>"),
			domain.NewNotebook(3, "Archive",
				domain.NewNote(4, "Old", "<p>old</p>"),
			),
		),
		domain.NewNote(5, "Inbox", ""),
	)
}

// ChainTree is a root holding one notebook holding one note "A".
func ChainTree() *domain.NoteObject {
	return domain.NewNotebook(domain.RootID, "Notes",
		domain.NewNotebook(1, "Folder",
			domain.NewNote(2, "A", "alpha"),
		),
	)
}
