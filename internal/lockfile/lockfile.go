// Package lockfile guards a sweep root against concurrent driver
// invocations. The core defines no internal mutual exclusion, so exclusive
// ownership is enforced here at the entry point instead.
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FileName is the lock's name inside a sweep root.
const FileName = "sweep.lock"

// contents identifies the holder, for the operator staring at a stale lock.
type contents struct {
	PID        int       `json:"pid"`
	Token      string    `json:"token"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is a held sweep-root lock.
type Lock struct {
	path  string
	token string
}

// Acquire takes the sweep-root lock, failing fast if another invocation
// holds it. Creation is O_EXCL so two racing invocations cannot both win.
func Acquire(sweepRoot string) (*Lock, error) {
	path := filepath.Join(sweepRoot, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("sweep root is locked by another invocation: %s (remove the file if that invocation is gone)", path)
		}
		return nil, errors.Wrap(err, "acquiring sweep lock")
	}

	lock := &Lock{path: path, token: uuid.NewString()}
	enc := json.NewEncoder(f)
	if err := enc.Encode(contents{PID: os.Getpid(), Token: lock.token, AcquiredAt: time.Now().UTC()}); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "writing sweep lock")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, errors.Wrap(err, "writing sweep lock")
	}
	return lock, nil
}

// Token returns the unique token identifying this acquisition.
func (l *Lock) Token() string {
	return l.token
}

// Release removes the lock file.
func (l *Lock) Release() error {
	return errors.Wrap(os.Remove(l.path), "releasing sweep lock")
}
