// Package logflags owns the per-layer loggers. The terminal belongs to the
// TUI, so unless Setup is given a file every logger writes to io.Discard.
package logflags

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	root   = newRoot(io.Discard, logrus.InfoLevel)
	closer io.Closer
)

func newRoot(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.Out = out
	l.Level = level
	l.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	return l
}

// Setup routes every layer logger to the file at path. An empty path keeps
// logging disabled. Calling Setup again replaces the previous sink.
func Setup(path, level string) error {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	if path == "" {
		root.SetOutput(io.Discard)
		root.SetLevel(lvl)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	closer = f
	root.SetOutput(f)
	root.SetLevel(lvl)
	return nil
}

// SetOutput points the loggers at w. Intended for tests.
func SetOutput(w io.Writer, level logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	root.SetOutput(w)
	root.SetLevel(level)
}

// Close releases the log file opened by Setup, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	root.SetOutput(io.Discard)
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func layer(name string) *logrus.Entry {
	return root.WithField("layer", name)
}

// ConfigLogger returns the logger for configuration loading.
func ConfigLogger() *logrus.Entry {
	return layer("config")
}

// MapsLogger returns the logger for the region table reader.
func MapsLogger() *logrus.Entry {
	return layer("maps")
}

// ScanLogger returns the logger for the pattern scanner.
func ScanLogger() *logrus.Entry {
	return layer("scan")
}

// SessionLogger returns the logger for the edit session.
func SessionLogger() *logrus.Entry {
	return layer("session")
}

func TUILogger() *logrus.Entry {
	return layer("tui")
}
