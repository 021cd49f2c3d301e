package binary

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute

	lockFileName = "install.lock"
)

// ErrLockExists is returned when another install holds the cache lock.
var ErrLockExists = errors.New("install lock exists: another install may be in progress")

// pidExists is swapped in tests.
var pidExists = process.PidExistsWithContext

// Polling bounds for WaitLock.
var (
	lockPollInterval    = 250 * time.Millisecond
	maxLockPollInterval = 5 * time.Second
)

// DefaultLockWait bounds how long an install waits for another job's lock.
const DefaultLockWait = 2 * time.Minute

// Lock guards one tool cache directory against concurrent installs, e.g.
// two jobs sharing a self-hosted runner.
type Lock struct {
	path  string
	file  *os.File
	owner string
}

// AcquireLock creates the lock file in dir. A lock left by a process that
// no longer exists, or older than StaleLockThreshold, is taken over.
func AcquireLock(ctx context.Context, dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, lockFileName)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if !isLockStale(ctx, lockPath) {
			return nil, ErrLockExists
		}
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	owner := uuid.New().String()
	lockData := fmt.Sprintf("pid=%d\nowner=%s\ntimestamp=%s\n", os.Getpid(), owner, time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{path: lockPath, file: file, owner: owner}, nil
}

// WaitLock acquires the lock in dir, polling with backoff while a live
// install holds it. It returns ErrLockExists once timeout has passed.
func WaitLock(ctx context.Context, dir string, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	interval := lockPollInterval
	for {
		lock, err := AcquireLock(ctx, dir)
		if !errors.Is(err, ErrLockExists) {
			return lock, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w (waited %s)", ErrLockExists, timeout)
		}
		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		interval = min(interval*2, maxLockPollInterval)
	}
}

// Release releases the lock. A lock file that was taken over by another
// install is left in place.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if owner, ok := readLockField(l.path, "owner"); ok && owner != l.owner {
			return nil
		}
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
	}

	return nil
}

// isLockStale reports whether the lock at lockPath can be taken over.
func isLockStale(ctx context.Context, lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > StaleLockThreshold {
		return true
	}

	pid, ok := readLockPID(lockPath)
	if !ok || pid == os.Getpid() {
		return false
	}
	exists, err := pidExists(ctx, int32(pid))
	if err != nil {
		return false
	}
	return !exists
}

func readLockPID(lockPath string) (int, bool) {
	value, ok := readLockField(lockPath, "pid")
	if !ok {
		return 0, false
	}
	pid, err := strconv.Atoi(value)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// readLockField returns the first "key=value" entry for key.
func readLockField(lockPath, key string) (string, bool) {
	f, err := os.Open(lockPath)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		value, found := strings.CutPrefix(strings.TrimSpace(scanner.Text()), key+"=")
		if found {
			return value, true
		}
	}
	return "", false
}
