package neat

import (
	"fmt"
	"io"
	"log"
	"strings"

	unilogger "github.com/neuronlabs/uni-logger"
)

// NewLogger creates a leveled logger writing to w. Pass the result to
// Network.SetLogger to receive mutation and training diagnostics.
func NewLogger(w io.Writer, level unilogger.Level) *unilogger.BasicLogger {
	logger := unilogger.NewBasicLogger(w, "neat: ", log.Ldate|log.Ltime)
	logger.SetLevel(level)
	return logger
}

// ParseLogLevel maps a config log level name onto a logger level.
func ParseLogLevel(name string) (unilogger.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return unilogger.DEBUG, nil
	case "info", "":
		return unilogger.INFO, nil
	case "warning", "warn":
		return unilogger.WARNING, nil
	case "error":
		return unilogger.ERROR, nil
	}
	return unilogger.UNKNOWN, fmt.Errorf("unknown log level '%s'", name)
}

// diagnostics wraps an optional logger; a nil logger discards everything.
type diagnostics struct {
	logger unilogger.LeveledLogger
}

func (d diagnostics) debugf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debugf(format, args...)
	}
}

func (d diagnostics) infof(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Infof(format, args...)
	}
}

func (d diagnostics) warningf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Warningf(format, args...)
	}
}

// exhausted reports a mutation that had no legal target.
func (d diagnostics) exhausted(kind MutationKind, reason string) {
	d.warningf("%s skipped: %v: %s", kind, ErrExhaustedSearchSpace, reason)
}
