package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const diskOpTimeout = 10 * time.Second

// DiskStore stores images on the local filesystem under a publicly served
// directory. Keys are relative paths like "posts/<uuid>.webp".
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at baseDir, serving files from
// baseURL.
func NewDiskStore(baseDir, baseURL string) *DiskStore {
	return &DiskStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload writes data under folder with a fresh uuid name and returns the
// stored reference.
func (s *DiskStore) Upload(ctx context.Context, data []byte, folder, originalName string) (Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, diskOpTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return Reference{}, err
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".webp"
	}
	key := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))

	dst := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Reference{}, fmt.Errorf("media: create dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return Reference{}, fmt.Errorf("media: write %s: %w", key, err)
	}

	return Reference{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes a stored object. A missing file is treated as success.
func (s *DiskStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, diskOpTimeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return nil
	}

	dst := filepath.Join(s.baseDir, filepath.FromSlash(key))
	// refuse to step outside the media root
	if rel, err := filepath.Rel(s.baseDir, dst); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("media: invalid key %q", key)
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: delete %s: %w", key, err)
	}
	return nil
}
