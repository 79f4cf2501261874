package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCatalog writes rows, one per line, to name in dir and returns the
// full path.
func WriteCatalog(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	RewriteCatalog(t, path, rows...)
	return path
}

// RewriteCatalog replaces the contents of an existing catalog file
func RewriteCatalog(t *testing.T, path string, rows ...string) {
	t.Helper()

	var content string
	if len(rows) > 0 {
		content = strings.Join(rows, "\n") + "\n"
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing catalog %s: %v", path, err)
	}
}

// TestLogger writes through t.Log so output is attached to the test
type TestLogger struct {
	t      *testing.T
	logger *slog.Logger
}

// NewTestLogger creates a debug level test logger
func NewTestLogger(t *testing.T) *TestLogger {
	tl := &TestLogger{t: t}

	handler := slog.NewTextHandler(tl, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	tl.logger = slog.New(handler)

	return tl
}

// Logger returns the slog.Logger instance
func (tl *TestLogger) Logger() *slog.Logger {
	return tl.logger
}

func (tl *TestLogger) Write(p []byte) (int, error) {
	tl.t.Helper()
	tl.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
