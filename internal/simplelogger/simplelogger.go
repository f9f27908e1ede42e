package simplelogger

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "PANEDIFF_LOG_FILE"

var mu sync.Mutex

// now is replaced in tests.
var now = time.Now

// Enabled reports whether Log will attempt to write anything.
func Enabled() bool {
	return os.Getenv(EnvLogFile) != ""
}

// Log appends one printf-style line to the file named by PANEDIFF_LOG_FILE, prefixed with an RFC 3339 timestamp.
//
// If PANEDIFF_LOG_FILE is unset/empty or the path can't be opened as a file, Log is a no-op.
func Log(format string, args ...any) {
	path := os.Getenv(EnvLogFile)
	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	var b bytes.Buffer
	b.WriteString(now().UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	_, _ = fmt.Fprintf(&b, format, args...)
	if b.Bytes()[b.Len()-1] != '\n' {
		_ = b.WriteByte('\n')
	}
	_, _ = f.Write(b.Bytes())
}
