package release

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the release lock.
var ErrLocked = errors.New("another mapassist run is preparing this release")

type releaseLock struct {
	path string
	lock *flock.Flock
}

func lockPath(dir, root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".lock")
}

// acquireLock takes the per-release lock under dir. An empty dir disables
// locking.
func acquireLock(dir, root string) (*releaseLock, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := lockPath(dir, root)
	l := &releaseLock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return l, nil
}

func (l *releaseLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
