// Package storage keeps uploaded assets (team/tournament logos, regulation
// documents) on local disk under opaque uuid filenames.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Files struct {
	root string
}

func NewFiles(root string) *Files {
	return &Files{root: root}
}

// Save streams the content into root/folder under a generated name and
// returns the stored path, used later as the asset reference.
func (f *Files) Save(folder, ext string, r io.Reader) (string, error) {
	dir := filepath.Join(f.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Remove deletes a stored asset. Missing files are not an error: a tournament
// may reference an asset that was already cleaned up by hand.
func (f *Files) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns the stored asset for re-sending to chats.
func (f *Files) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
