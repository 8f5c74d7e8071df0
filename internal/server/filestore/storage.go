// Package filestore stores uploaded media keyed by a relative path.
//
// Three backends are available: the local filesystem, S3 (aws-sdk-go-v2) and
// MinIO (minio-go). All of them satisfy Storage.
package filestore

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/common"
)

// Storage is the path keyed file storage used for profile images.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

type Config struct {
	Backend   string
	MediaRoot string
	MediaURL  string

	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocal(cfg.MediaRoot, cfg.MediaURL)
	case BackendS3:
		return NewS3(ctx, cfg)
	case BackendMinio:
		return NewMinio(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func storageErr(op, name string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", common.ErrStorage, op, name, err)
}

// cleanKey normalizes name to a slash separated relative key and rejects
// anything that would escape the storage root.
func cleanKey(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty file name", common.ErrStorage)
	}
	key := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))[1:]
	if key == "" || key != strings.TrimPrefix(path.Clean(name), "./") {
		return "", fmt.Errorf("%w: invalid file name %q", common.ErrStorage, name)
	}
	return key, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
