package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/cosmetica/internal/domain"
)

const (
	MaxImageBytes = 5 << 20
	MaxVideoBytes = 100 << 20
)

var (
	imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	videoExts = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".wmv": true}
)

// Storage keeps uploads on disk as <root>/<kind>/<uuid><ext>.
type Storage struct {
	root string
}

func New(root string) *Storage { return &Storage{root: root} }

func (s *Storage) Root() string { return s.root }

func (s *Storage) Save(ctx context.Context, kind domain.MediaKind, originalName string, r io.Reader) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown media kind %q", domain.ErrInvalidInput, kind)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	allowed, limit := imageExts, int64(MaxImageBytes)
	if kind.IsVideo() {
		allowed, limit = videoExts, MaxVideoBytes
	}
	if !allowed[ext] {
		return "", fmt.Errorf("%w: file type %q not allowed", domain.ErrInvalidInput, ext)
	}

	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	// one byte past the limit tells an oversized file from an exact fit
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = fmt.Errorf("%w: file exceeds %d MB", domain.ErrInvalidInput, limit>>20)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

func (s *Storage) Remove(ctx context.Context, kind domain.MediaKind, name string) error {
	if name == "" {
		return nil
	}
	// stored names never contain a directory part
	base := filepath.Base(name)
	err := os.Remove(filepath.Join(s.root, string(kind), base))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
