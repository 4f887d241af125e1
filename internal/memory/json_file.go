package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is the memory file used when none is configured.
const DefaultPath = "bluey_memory.json"

// JSONFile stores memories in a single indented JSON file.
type JSONFile struct {
	path string
}

// NewJSONFile creates a backend for path.
func NewJSONFile(path string) *JSONFile {
	if path == "" {
		path = DefaultPath
	}
	return &JSONFile{path: path}
}

// Path returns the file location.
func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Describe() string { return "json file " + f.path }

func (f *JSONFile) Load(ctx context.Context) (*Data, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read memory file: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse memory file %s: %w", f.path, err)
	}
	return data.normalize(), nil
}

func (f *JSONFile) Save(ctx context.Context, data *Data) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create memory directory: %w", err)
		}
	}

	raw, err := Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode memories: %w", err)
	}
	return writeFileAtomic(f.path, raw, 0644)
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place, so readers see either the old or the new document.
func writeFileAtomic(path string, raw []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp memory file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write memory file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync memory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close memory file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set memory file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace memory file: %w", err)
	}
	return nil
}

// Init writes an empty memory file when none exists.
func (f *JSONFile) Init(ctx context.Context) error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat memory file: %w", err)
	}
	return f.Save(ctx, Empty())
}

func (f *JSONFile) Close() error { return nil }
