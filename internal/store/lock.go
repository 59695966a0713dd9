package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	batchLockDirName   = ".batch.lock"
	batchLockOwnerFile = "owner.json"
)

// BatchLock guards an output directory for the duration of one batch run.
// The ledger itself assumes a single writer; this makes two concurrent
// batches against the same directory fail fast instead of interleaving
// sequence numbers.
type BatchLock struct {
	lockDir string
}

type batchLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func AcquireBatchLock(outputDir string) (BatchLock, error) {
	target := strings.TrimSpace(outputDir)
	if target == "" {
		return BatchLock{}, fmt.Errorf("output directory is required")
	}
	if err := Mkdir(target); err != nil {
		return BatchLock{}, err
	}

	lockDir := filepath.Join(target, batchLockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, batchLockOwnerFile)
			var owner batchLockOwner
			if readErr := ReadJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return BatchLock{}, fmt.Errorf(
					"output directory is locked by another batch: %s (pid=%d created_at=%s host=%s)",
					target, owner.PID, owner.CreatedAt, owner.Hostname,
				)
			}
			return BatchLock{}, fmt.Errorf("output directory is locked by another batch: %s", target)
		}
		return BatchLock{}, fmt.Errorf("acquire batch lock for %s: %w", target, err)
	}

	owner := batchLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, batchLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return BatchLock{}, fmt.Errorf("write batch lock owner for %s: %w", target, err)
	}

	return BatchLock{lockDir: lockDir}, nil
}

func (l BatchLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, batchLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release batch lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
