package export

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding an archive directory. It lives next
// to the directory rather than inside it so the lock never shows up as an
// uncommitted change.
func LockPath(archiveDir string) string {
	return filepath.Clean(archiveDir) + ".lock"
}

// AcquireLock takes the run lock for an archive, failing immediately when
// another export holds it. The returned function releases the lock.
func AcquireLock(path string) (func() error, error) {
	lock := flock.New(path)
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("another export is already running (lock held at %s)", path)
	}
	return lock.Unlock, nil
}
