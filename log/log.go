package log

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
)

var debugging atomic.Bool

// SetDebug enables or disables DEBUG level messages.
func SetDebug(enabled bool) {
	debugging.Store(enabled)
}

// SetOutput redirects the log output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debugf(format string, args ...any) {
	if debugging.Load() {
		log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
	}
}

func Infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	log.Printf("%-5s %s", "ERROR", fmt.Sprintf(format, args...))
}
