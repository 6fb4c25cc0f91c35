// Package localfs opens documents on the local filesystem for upload.
package localfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// ErrNotRegularFile indicates the path names a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")

// Document is an opened file ready to be streamed to the service.
// Close must be called once the upload has finished.
type Document struct {
	file *os.File
	path string
	size int64
}

// Open resolves path (expanding a leading ~/) and opens it for reading.
func Open(path string) (*Document, error) {
	resolved, err := Expand(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, resolved)
	}

	return &Document{file: f, path: resolved, size: info.Size()}, nil
}

// Path returns the resolved path.
func (d *Document) Path() string {
	return d.path
}

// UploadFile returns the upload descriptor backed by the open file.
func (d *Document) UploadFile() *domain.UploadFile {
	return &domain.UploadFile{
		Name:    filepath.Base(d.path),
		Size:    d.size,
		Content: d.file,
	}
}

// Close releases the file.
func (d *Document) Close() error {
	return d.file.Close()
}

// Expand trims path and replaces a leading ~/ with the home directory.
func Expand(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty path")
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
