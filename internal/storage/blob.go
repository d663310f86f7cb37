package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore is the image-storage collaborator: it accepts bytes and
// returns a URL the notification channels can embed.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

var extensionByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DiskStore writes blobs under a local directory and serves them from
// a public base URL. It stands in for a remote object store behind the
// same interface.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore prepares the upload directory.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put stores the blob under a random name.
func (s *DiskStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := extensionByType[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// SupportedContentType reports whether the store accepts the MIME type.
func SupportedContentType(contentType string) bool {
	_, ok := extensionByType[contentType]
	return ok
}
