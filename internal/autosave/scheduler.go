// Package autosave drives periodic flushes of the edit session. It is a
// bubbletea tick chain: each tick, when handled, arms the next one.
package autosave

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the time between autosave ticks.
const DefaultInterval = 5 * time.Second

// TickMsg is delivered on every autosave tick.
type TickMsg struct {
	Generation int
	At         time.Time
}

// Scheduler owns the tick chain. Generations make restarts safe: ticks
// from an earlier Start or from before a Stop are recognised and dropped,
// so there is never more than one live chain.
type Scheduler struct {
	interval   time.Duration
	generation int
	running    bool
}

// New returns a stopped scheduler. Non-positive intervals use
// DefaultInterval.
func New(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

func (s *Scheduler) Interval() time.Duration { return s.interval }
func (s *Scheduler) Running() bool           { return s.running }

// Generation identifies the live tick chain.
func (s *Scheduler) Generation() int { return s.generation }

// Start begins a new tick chain, abandoning any previous one.
func (s *Scheduler) Start() tea.Cmd {
	s.generation++
	s.running = true
	return s.next()
}

// Stop abandons the current chain.
func (s *Scheduler) Stop() {
	s.generation++
	s.running = false
}

// Handle reports whether msg belongs to the live chain (and a flush should
// run) and returns the command that arms the following tick.
func (s *Scheduler) Handle(msg TickMsg) (fire bool, next tea.Cmd) {
	if !s.running || msg.Generation != s.generation {
		return false, nil
	}
	return true, s.next()
}

func (s *Scheduler) next() tea.Cmd {
	gen := s.generation
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return TickMsg{Generation: gen, At: t}
	})
}
