package log

// Logger is the minimal structured logging contract consumed by the
// client. Implementations must be safe for concurrent use.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// WithFields returns a child logger with key/value pairs attached to
	// every entry. Fields are alternating keys and values.
	WithFields(fields ...any) Logger

	// Sync flushes any buffered entries.
	Sync() error
}
