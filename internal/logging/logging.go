// Package logging configures the process-wide apex logger and adapts
// io.Writer based loggers (stdlib log, gin) onto it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup installs the handler for format ("text" or "json") writing to w and
// sets the level parsed from level.
func Setup(w io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "json":
		log.SetHandler(json.New(w))
	case "text", "":
		log.SetHandler(text.New(w))
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	log.SetLevel(lvl)
	return nil
}

// Default installs the text handler on stderr at info level
func Default() {
	log.SetHandler(text.New(os.Stderr))
	log.SetLevel(log.InfoLevel)
}
