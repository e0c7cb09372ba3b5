package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 5 * 1024 * 1024 // 5MB

var (
	ImageExtensions    = []string{"png", "jpg", "jpeg", "gif", "webp"}
	DocumentExtensions = []string{"png", "jpg", "jpeg", "gif", "pdf", "doc", "docx"}
)

// LocalStore writes uploads under a single directory with random names,
// so a stored identifier never reveals or collides with another upload.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save validates extension and size, then persists the file under a uuid
// name. The returned name is the stored identifier.
func (s *LocalStore) Save(file *multipart.FileHeader, allowedExtensions []string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))

	if !extensionAllowed(ext, allowedExtensions) {
		return "", fmt.Errorf("extension %q is not allowed, only [%s]", ext, strings.Join(allowedExtensions, ", "))
	}

	if file.Size > MaxFileSize {
		return "", fmt.Errorf("file is too large, maximum is 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + "." + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *LocalStore) Remove(name string) error {
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the absolute location of a stored file, confined to the
// store directory.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *LocalStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func extensionAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
