package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// LocalFile stores the plan in a file on disk. Saves write a temporary file
// next to the target and rename it into place, so readers never see a
// partially written plan.
type LocalFile struct {
	path string
	mu   sync.Mutex
}

// NewLocalFile returns a store for the file at path.
func NewLocalFile(path string) *LocalFile {
	return &LocalFile{path: path}
}

// Path returns the file location.
func (f *LocalFile) Path() string {
	return f.path
}

// Name implements Store.
func (f *LocalFile) Name() string {
	return "file"
}

// Load reads the whole file.
func (f *LocalFile) Load(ctx context.Context) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Content{}, fmt.Errorf("%w: %s", ErrNotFound, f.path)
	}
	if err != nil {
		return Content{}, fmt.Errorf("read %s: %w", f.path, err)
	}

	text := string(data)
	return Content{Text: text, Revision: Revision(text)}, nil
}

// Save replaces the file with text.
func (f *LocalFile) Save(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
