package store

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrRunLocked means another process holds the run lock for this data dir.
var ErrRunLocked = errors.New("another run is already using this checkpoint database")

// RunLock serializes writers: concurrent invocations against the same
// checkpoint db are rejected, not silently raced.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes a non-blocking exclusive lock on path (a lock file
// beside the db). Fails fast with ErrRunLocked when already held.
func AcquireRunLock(path string) (*RunLock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunLocked
	}
	return &RunLock{fl: fl}, nil
}

func (l *RunLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
