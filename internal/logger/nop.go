package logger

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

// NewNop creates a logger that does nothing.
func NewNop() Logger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(msg string, fields ...Field) {}
func (l *NopLogger) Info(msg string, fields ...Field)  {}
func (l *NopLogger) Warn(msg string, fields ...Field)  {}
func (l *NopLogger) Error(msg string, fields ...Field) {}
func (l *NopLogger) Fatal(msg string, fields ...Field) {}

// With returns the same no-op logger.
func (l *NopLogger) With(fields ...Field) Logger { return l }

// Sync does nothing.
func (l *NopLogger) Sync() error { return nil }
