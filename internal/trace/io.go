package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveToFile writes tr as indented JSON. The file is replaced atomically so
// concurrent writers to the same path never leave a partial document behind.
func SaveToFile(path string, tr CallTrace) error {
	b, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("trace: marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	return nil
}

// SaveToDir writes tr to <dir>/<request_id>.json and returns the file path.
func SaveToDir(dir string, tr CallTrace) (string, error) {
	name := strings.TrimSpace(tr.RequestID)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("trace: invalid request id %q", tr.RequestID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("trace: create dir %q: %w", dir, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := SaveToFile(path, tr); err != nil {
		return "", err
	}
	return path, nil
}

func LoadFromFile(path string) (CallTrace, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return CallTrace{}, fmt.Errorf("trace: read %q: %w", path, err)
	}
	var tr CallTrace
	if err := json.Unmarshal(b, &tr); err != nil {
		return CallTrace{}, fmt.Errorf("trace: unmarshal %q: %w", path, err)
	}
	return tr, nil
}
