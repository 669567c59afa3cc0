package storage

import "sync"

// resetDataDirForTest clears the cached data directory so each test can
// point REALMATLAS_DATA_DIR at its own temp dir.
func resetDataDirForTest() {
	dataDirOnce = sync.Once{}
	dataDirPath = ""
}
