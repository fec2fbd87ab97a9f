package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// getOrGenerateInstanceID returns the ID stored at path, creating and
// persisting a new one on first start. Failing to persist is not fatal.
func getOrGenerateInstanceID(path string) string {
	content, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(content)); id != "" {
			return id
		}
	}

	newID := "instance-" + uuid.New().String()
	slog.Info("config: new instance ID generated", "id", newID)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("config: could not create data directory", "dir", filepath.Dir(path), "err", err)
		return newID
	}
	if err := os.WriteFile(path, []byte(newID), 0o644); err != nil {
		slog.Warn("config: could not save instance ID", "path", path, "err", err)
	} else {
		slog.Info("config: instance ID saved", "path", path)
	}

	return newID
}
