package automaton

import "go.uber.org/zap"

// Options configures a DFA.
type Options struct {
	// Logger receives debug events for transitions, rollbacks and validation
	// sweeps. If nil, a no-op logger is used.
	Logger *zap.Logger
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{}
}
