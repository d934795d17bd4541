package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"
)

// PanicSafeLogger mirrors log output to a console and a log file that is
// synced before a crash takes the process down.
type PanicSafeLogger struct {
	f  *os.File
	mw io.Writer
}

var std *PanicSafeLogger

func NewPanicSafeLogger(f *os.File, console io.Writer) *PanicSafeLogger {
	std = &PanicSafeLogger{
		f:  f,
		mw: io.MultiWriter(console, f),
	}
	return std
}

func (l *PanicSafeLogger) Write(p []byte) (n int, err error) {
	return l.mw.Write(p)
}

func (l *PanicSafeLogger) Flush() error {
	return l.f.Sync()
}

func FlushLogger() error {
	if std == nil {
		return nil
	}
	return std.Flush()
}

func LogPanic(err any) {
	log.Printf("paniced with %v\n%s\n", err, string(debug.Stack()))
	_ = FlushLogger()
}

// OpenLogFile creates a timestamped log file in the temp directory.
func OpenLogFile(prefix string) (f *os.File, path string, err error) {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.ReplaceAll(ts, ":", "-")
	ts = strings.ReplaceAll(ts, ".", "-")
	path = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.log", prefix, ts))
	f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	return
}

// InitLog sets the log format used by every binary and, when a log file can be
// opened, tees output to console and file.
func InitLog(prefix string, console io.Writer) (path string) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
	log.SetOutput(console)

	f, path, err := OpenLogFile(prefix)
	if err != nil {
		log.Printf("could not open log file '%s' for writing\n", path)
		return ""
	}

	log.Printf("logging to '%s'\n", path)
	log.SetOutput(NewPanicSafeLogger(f, console))
	return path
}
