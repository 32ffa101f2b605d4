package api

import (
	"github.com/rs/zerolog"
)

// CallEvent records metadata about a single API call.
type CallEvent struct {
	RequestID string
	Method    string
	Path      string
	Status    int
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about API calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "api").Logger()}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ev := o.log.Debug()
	if !event.Success {
		ev = o.log.Warn().Str("error_code", event.ErrorCode)
	}
	ev.Str("request_id", event.RequestID).
		Str("method", event.Method).
		Str("path", event.Path).
		Int("status", event.Status).
		Int("attempts", event.Attempts).
		Int64("latency_ms", event.LatencyMs).
		Msg("api_call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
