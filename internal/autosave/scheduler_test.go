package autosave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0).Interval())
	assert.Equal(t, DefaultInterval, New(-time.Second).Interval())
	assert.Equal(t, 3*time.Second, New(3*time.Second).Interval())
}

func TestScheduler_TickFiresAndRearms(t *testing.T) {
	s := New(time.Millisecond)
	cmd := s.Start()
	require.NotNil(t, cmd)

	msg, ok := cmd().(TickMsg)
	require.True(t, ok)

	fire, next := s.Handle(msg)
	assert.True(t, fire)
	assert.NotNil(t, next)
}

func TestScheduler_RestartDropsOldChain(t *testing.T) {
	s := New(time.Millisecond)
	old := s.Start()().(TickMsg)

	s.Start()

	fire, next := s.Handle(old)
	assert.False(t, fire)
	assert.Nil(t, next)
}

func TestScheduler_StopDropsTicks(t *testing.T) {
	s := New(time.Millisecond)
	msg := s.Start()().(TickMsg)

	s.Stop()

	assert.False(t, s.Running())
	fire, next := s.Handle(msg)
	assert.False(t, fire)
	assert.Nil(t, next)
}

func TestScheduler_NotStarted(t *testing.T) {
	s := New(time.Millisecond)

	fire, _ := s.Handle(TickMsg{})
	assert.False(t, fire)
}

func TestScheduler_GenerationMatchesTicks(t *testing.T) {
	s := New(time.Millisecond)
	msg := s.Start()().(TickMsg)

	assert.Equal(t, s.Generation(), msg.Generation)
}
