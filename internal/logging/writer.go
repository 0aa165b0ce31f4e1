package logging

import (
	"strings"

	"github.com/apex/log"
)

// Writer implements io.Writer and forwards every non-empty line to the apex
// logger. Writer must always be constructed by calling NewWriter.
type Writer struct {
	fields log.Fielder
	level  log.Level
}

// Write implements the io.Writer interface for Writer. Trailing whitespace is
// trimmed since apex log adds its own framing.
func (w *Writer) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), " \n\t")

	for _, s := range strings.FieldsFunc(msg, func(c rune) bool { return c == '\n' || c == '\r' }) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		entry := log.WithFields(w.fields)
		switch w.level {
		case log.DebugLevel:
			entry.Debug(s)
		case log.WarnLevel:
			entry.Warn(s)
		case log.ErrorLevel:
			entry.Error(s)
		default:
			entry.Info(s)
		}
	}

	return len(p), nil
}

// NewWriter creates a Writer that logs each line at level with fields
// attached. It can be passed to log.SetOutput or gin.DefaultWriter.
func NewWriter(fields log.Fielder, level log.Level) *Writer {
	return &Writer{
		fields: fields,
		level:  level,
	}
}
