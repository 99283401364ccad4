// Package testing flags the process as a test run. Blank-import it from any
// _test.go file so commands that share the binary skip their startup side
// effects (database pools, Redis, listeners).
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	_ = os.Setenv("QUILL_TEST_MODE", "1")
}

// TestMain keeps the default run behavior; the work happens in init.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
