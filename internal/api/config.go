package api

import "time"

// Config holds the settings for talking to the notes server.
type Config struct {
	BaseURL    string
	Token      string // sent as X-Freenote-Token when set
	User       string // sent as X-Freenote-User when set
	Timeout    time.Duration
	MaxRetries int // extra attempts for GET requests only
}

// DefaultConfig returns a Config pointing at a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://127.0.0.1:5000",
		Timeout:    10 * time.Second,
		MaxRetries: 1,
	}
}
