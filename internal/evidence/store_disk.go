package evidence

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"workcheck/pkg/platform/sentinel"
)

// DiskStore writes evidence files under a local directory. Stored names
// are prefixed with a fresh UUID so uploads never collide or overwrite.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating evidence directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + "-" + sanitizeFilename(originalFilename)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: creating evidence file: %w", sentinel.ErrUnavailable, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: writing evidence file: %w", sentinel.ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: closing evidence file: %w", sentinel.ErrUnavailable, err)
	}

	return "/uploads/" + name, nil
}

// sanitizeFilename strips any path components from a client-supplied
// filename so stored names cannot escape the evidence directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "evidence"
	}
	return base
}
