// Package toolutil provides shared helpers for go_guide MCP tools.
package toolutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_guide/internal/export"
)

// NormLang normalises a caption language code: trimmed and lowercased.
// Empty means the configured default language.
func NormLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// WriteArtifact stores an export artifact under dir and returns its path.
// An empty dir falls back to the working directory.
func WriteArtifact(dir string, art *export.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, art.Filename)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
