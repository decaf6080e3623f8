package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// The session identifier names this client both in the websocket path and
// in upload submissions, so the backend can correlate an upload with the
// snapshot queries that follow it. It is persisted so separate command
// invocations share one session.

func stateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "pvdash"), nil
}

// SessionID returns the persisted session identifier, generating and
// saving a fresh one on first use.
func SessionID() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "session-id")
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0644); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	return id, nil
}

// ResetSession discards the persisted session identifier; the next call to
// SessionID starts a fresh session.
func ResetSession() error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, "session-id")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session id: %w", err)
	}
	return nil
}
