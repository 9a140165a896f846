package recorder

import "time"

// AuthEvent records one request-token exchange.
type AuthEvent struct {
	Success  bool
	UserName string
	Code     string // error code name when Success is false
}

// FetchEvent records the outcome for one symbol within a fetch run.
type FetchEvent struct {
	RunID   string
	Symbol  string
	Ticker  string
	Candles int
	Saved   bool
	Code    string // error code name when Saved is false
}

// RunEvent summarises one fetch run.
type RunEvent struct {
	RunID     string
	Days      int
	Succeeded int
	Total     int
	Duration  time.Duration
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordAuth(evt *AuthEvent) error
	RecordFetch(evt *FetchEvent) error
	RecordRun(evt *RunEvent) error
	Close() error
}
