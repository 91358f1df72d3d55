package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	stateDir := t.TempDir()

	lock, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(stateDir, LockFileName)
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("failed to release lock: %v", err)
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("lock file still exists after release")
	}

	// Release is idempotent.
	if err := lock.Release(); err != nil {
		t.Errorf("second release failed: %v", err)
	}
}

func TestReacquireAfterRelease(t *testing.T) {
	stateDir := t.TempDir()

	first, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("failed to release lock: %v", err)
	}

	second, err := AcquireLock(stateDir)
	if err != nil {
		t.Fatalf("failed to reacquire lock after release: %v", err)
	}
	second.Release()
}

func TestLockErrorUnwrap(t *testing.T) {
	cause := errors.New("resource temporarily unavailable")
	lockErr := &LockError{LockPath: "/tmp/renointake.lock", ExistingInfo: "PID 42 (running)", Cause: cause}

	if !errors.Is(lockErr, cause) {
		t.Error("LockError should unwrap to its cause")
	}
	msg := lockErr.Error()
	if !strings.Contains(msg, "/tmp/renointake.lock") || !strings.Contains(msg, "PID 42") {
		t.Errorf("unexpected error message: %s", msg)
	}
}

func TestExtractPIDFromLockInfo(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"valid pid", "pid=12345\n", 12345},
		{"no pid", "something else", 0},
		{"empty value", "pid=", 0},
		{"pid mid content", "host=x\npid=42\n", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPIDFromLockInfo(tt.content); got != tt.want {
				t.Errorf("extractPIDFromLockInfo(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
