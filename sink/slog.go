package sink

import "log/slog"

// Slog forwards transcript lines to a structured logger at info level.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates a sink over logger, or over slog.Default() when nil.
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

// Log writes line as an info record.
func (s *Slog) Log(line string) {
	s.logger.Info(line)
}
