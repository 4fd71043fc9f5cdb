package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"nepalstay/internal/domain"
)

var allowedExt = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Store saves uploaded files under a local directory with random names.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Save writes fh under dir/category and returns the relative path.
func (s *Store) Save(fh *multipart.FileHeader, category string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %s: only pdf, jpg and png files are accepted", domain.ErrInvalidInput, fh.Filename)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrInvalidInput, fh.Filename, s.maxBytes)
	}

	dir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(category, name)), nil
}

// Dir is the root the store writes into.
func (s *Store) Dir() string { return s.dir }
