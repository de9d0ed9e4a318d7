package logging

import (
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// L is the process-wide logger.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
})

// Setup sets the level from a name ("debug", "info", ...). Unknown names keep info.
func Setup(level string) {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = clog.InfoLevel
	}
	L.SetLevel(lvl)
}

// SetOutput redirects the logger, tests use it to capture output.
func SetOutput(w io.Writer) {
	L.SetOutput(w)
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...any) *clog.Logger {
	return L.With(keyvals...)
}
