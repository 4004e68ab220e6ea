package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErr "github.com/mindweave/engine/pkg/errors"
)

// MaxImageSize bounds uploaded profile images.
const MaxImageSize = 5 << 20 // 5 MiB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ImageStore persists uploaded profile images and returns a public URL.
type ImageStore interface {
	SaveProfileImage(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (string, error)
}

// diskImageStore writes images under dir/profile and serves them from
// baseURL. Files are named by user id, so re-uploads overwrite in place.
type diskImageStore struct {
	dir     string
	baseURL string
}

var _ ImageStore = (*diskImageStore)(nil)

func NewDiskImageStore(dir, baseURL string) (ImageStore, error) {
	profileDir := filepath.Join(dir, "profile")
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskImageStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *diskImageStore) SaveProfileImage(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return "", appErr.New(appErr.CodeInvalid, "unsupported image type "+ext)
	}

	name := userID.String() + ext
	path := filepath.Join(s.dir, "profile", name)

	f, err := os.Create(path)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "create image file failed")
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		os.Remove(path)
		return "", appErr.Wrap(err, appErr.CodeInternal, "write image file failed")
	}
	if n > MaxImageSize {
		os.Remove(path)
		return "", appErr.New(appErr.CodeInvalid, "image exceeds the 5 MiB limit")
	}

	return s.baseURL + "/profile/" + name, nil
}
