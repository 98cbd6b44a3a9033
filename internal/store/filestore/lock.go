package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const (
	lockRetries  = 10
	lockDelay    = 100 * time.Millisecond
	staleLockAge = 30 * time.Second
)

// acquireFileLock takes a cross-process advisory lockfile next to path and
// returns a release func.
func acquireFileLock(path string) (func(), error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	for range lockRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if removeStaleLock(lockPath) {
			continue
		}
		time.Sleep(lockDelay)
	}
	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock deletes a lock older than staleLockAge whose owner is gone.
func removeStaleLock(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil || time.Since(info.ModTime()) <= staleLockAge {
		return false
	}
	if heldByLiveProcess(lockPath) {
		return false
	}
	_ = os.Remove(lockPath)
	return true
}

func heldByLiveProcess(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil || len(data) == 0 {
		return false
	}
	var pid int
	if _, err = fmt.Sscanf(string(data), "%d", &pid); err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 probes for existence
	return proc.Signal(syscall.Signal(0)) == nil
}
