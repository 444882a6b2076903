package marlin

import (
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

// sessionLogPattern names one run's log file, generalizing the teacher's
// own daily-log-file-name convention (src/log.go's "2006-01-02.log"
// per-day APRS packet log) to a per-run G-code session log, using
// strftime instead of Go's reference-time layout since that's the
// formatter the teacher already depends on.
const sessionLogPattern = "samoyed-level-%Y-%m-%d-%H%M%S.log"

// OpenSessionLog creates a new per-run log file under dir, named from the
// current time, and returns it open for appending. The caller owns
// closing it.
func OpenSessionLog(dir string, now time.Time) (*os.File, error) {
	f, err := strftime.New(sessionLogPattern)
	if err != nil {
		return nil, err
	}

	name := f.FormatString(now)
	path := filepath.Join(dir, name)

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
