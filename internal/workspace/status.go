package workspace

// StatusKind classifies the transient indicator shown to the user.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusInfo
	StatusSaved
	StatusError
)

// Status is the indicator line. It expires after the configured TTL.
type Status struct {
	Kind StatusKind
	Text string
}

const (
	textSaved      = "Saved"
	textSaveFailed = "Failed to save"
)

func (s Status) IsZero() bool { return s.Kind == StatusNone }
