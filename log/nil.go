package log

// NopLogger drops every log entry. It is the default logger wherever one
// is not injected.
type NopLogger struct{}

// NewNop creates a no-op logger.
func NewNop() Logger {
	return &NopLogger{}
}

// Debugf drops the entry.
func (l *NopLogger) Debugf(string, ...any) {}

// Infof drops the entry.
func (l *NopLogger) Infof(string, ...any) {}

// Warnf drops the entry.
func (l *NopLogger) Warnf(string, ...any) {}

// Errorf drops the entry.
func (l *NopLogger) Errorf(string, ...any) {}

// WithFields returns the same no-op logger.
//
//nolint:ireturn
func (l *NopLogger) WithFields(...any) Logger { return l }

// Sync is a no-op and always returns nil.
func (l *NopLogger) Sync() error { return nil }
