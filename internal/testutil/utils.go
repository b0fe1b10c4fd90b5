// Package testutil holds small helpers shared across package tests.
package testutil

import (
	"log"
	"os"
	"testing"
)

// TestLogger returns a logger for use in tests. Tests that assert on
// log output swap the destination with SetOutput; the cleanup restores
// a sane default so later tests in the package are unaffected.
func TestLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
	})
	return logger
}
