package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked writer polls the lock file.
const lockRetryDelay = 5 * time.Millisecond

// LockPathFor returns the advisory lock file guarding a document.
func LockPathFor(documentPath string) string {
	return documentPath + ".lock"
}

// withWriteLock runs fn while holding the exclusive advisory lock of documentPath.
// Every call opens its own descriptor, so writers in other processes and other
// handles in this process are serialized alike. Readers take no lock: documents are
// replaced by rename, so a read sees one complete version.
func withWriteLock(ctx context.Context, documentPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(documentPath), 0o750); err != nil {
		return err
	}

	lock := flock.New(LockPathFor(documentPath), flock.SetPermissions(0o600))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", documentPath, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", documentPath)
	}
	defer func() {
		_ = lock.Close()
	}()

	return fn()
}
