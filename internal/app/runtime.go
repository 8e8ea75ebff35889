package app

import (
	"os"
	"sync"
)

const testModeEnv = "HOTELAUDIT_TEST_MODE"

var (
	testModeMu  sync.RWMutex
	testModeSet bool
	testMode    bool
)

// InTestMode reports whether binaries should skip connecting to Postgres,
// Redis and the job queue. Set HOTELAUDIT_TEST_MODE=1 to enable.
func InTestMode() bool {
	testModeMu.RLock()
	if testModeSet {
		defer testModeMu.RUnlock()
		return testMode
	}
	testModeMu.RUnlock()
	RefreshTestMode()
	return InTestMode()
}

// RefreshTestMode re-reads the flag after environment changes.
func RefreshTestMode() {
	testModeMu.Lock()
	defer testModeMu.Unlock()
	testMode = os.Getenv(testModeEnv) == "1"
	testModeSet = true
}
