package util

import (
	"log"
	"os"
	"testing"
)

func NewTestingLogger(tb testing.TB) *CommitLogger {
	return &CommitLogger{
		Committer: func(p []byte) {
			tb.Log(string(p))
		},
		buf: nil,
	}
}

// RedirectLog sends the standard logger to tb until the test ends.
func RedirectLog(tb testing.TB) {
	log.SetOutput(NewTestingLogger(tb))
	tb.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})
}
