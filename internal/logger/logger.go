package logger

import (
	"strings"
	"sync"
)

// Log levels accepted in config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings accepted in config (log.format).
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Options controls how the process-wide logger is built.
type Options struct {
	Level  string
	Format string
}

// Init builds the process-wide logger from opts on first use and returns it.
func Init(opts Options) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(normalize(opts.Level), normalize(opts.Format))
	})
	return globalLogger
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
