package logger

import (
	"sync"
)

// Level names accepted in config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	shared   *Logger
	initOnce sync.Once
)

// Get returns the process-wide logger. The level argument only matters on
// the first call; later callers get the instance that already exists.
func Get(level string) *Logger {
	initOnce.Do(func() {
		shared = newZapLogger(level)
	})
	return shared
}
