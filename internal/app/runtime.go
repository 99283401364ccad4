package app

import "os"

// testModeEnv gates side effects in the command mains. The testing helper
// package sets it in init, so binaries built into a `go test` run exit
// before touching Postgres or Redis.
const testModeEnv = "QUILL_TEST_MODE"

// InTestMode reports whether runtime startup should be skipped. The
// environment is read on every call; mains check it exactly once.
func InTestMode() bool {
	return os.Getenv(testModeEnv) == "1"
}
