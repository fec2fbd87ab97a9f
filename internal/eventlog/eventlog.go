// Package eventlog writes the human-readable block log, one timestamped line
// per event. The file is appended to across restarts and truncated the first
// time an event lands on a different local calendar day than the one the file
// was opened on.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/strct-org/ytblocker/internal/errs"
)

const (
	opOpen   errs.Op = "eventlog.Open"
	opRotate errs.Op = "eventlog.Rotate"
	opWrite  errs.Op = "eventlog.Write"

	// timestampLayout renders as "Oct 19 08:03:07:   ".
	timestampLayout = "Jan 2 15:04:05:   "
)

// Timestamp formats t (in its own location) as the line prefix.
func Timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Log is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	path   string
	f      *os.File // nil after Close or a failed truncation
	day    civilDay
	closed bool
}

type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{year: y, month: m, day: d}
}

// Open opens path for appending, creating it and its directory if needed.
// now fixes the day later events are compared against.
func Open(path string, now time.Time) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.E(opOpen, errs.KindIO, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errs.E(opOpen, errs.KindIO, err, "could not create log file")
	}
	return &Log{path: path, f: f, day: dayOf(now)}, nil
}

// Path returns the file the log writes to.
func (l *Log) Path() string {
	return l.path
}

// Write appends "<timestamp><msg>\n", truncating first if t is on a new day.
// A truncation that failed earlier is retried on the next Write.
func (l *Log) Write(t time.Time, msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errs.E(opWrite, errs.KindIO, os.ErrClosed)
	}
	if d := dayOf(t); l.f == nil || d != l.day {
		if err := l.rotateLocked(d); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(l.f, "%s%s\n", Timestamp(t), msg); err != nil {
		return errs.E(opWrite, errs.KindIO, err)
	}
	return nil
}

// Rotate truncates the file and makes t's day the current one.
func (l *Log) Rotate(t time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errs.E(opRotate, errs.KindIO, os.ErrClosed)
	}
	return l.rotateLocked(dayOf(t))
}

func (l *Log) rotateLocked(d civilDay) error {
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errs.E(opRotate, errs.KindIO, err, "could not recreate log file")
	}
	l.f = f
	l.day = d
	return nil
}

// Close is idempotent.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
