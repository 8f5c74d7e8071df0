package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrijs2005/userservice/internal/common"
)

type minioAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

var newMinioClient = func(endpoint string, opts *minio.Options) (minioAPI, error) {
	return minio.New(endpoint, opts)
}

// Minio stores files in a MinIO bucket, creating the bucket on start.
type Minio struct {
	client    minioAPI
	bucket    string
	publicURL string
}

func NewMinio(ctx context.Context, c Config) (*Minio, error) {
	if c.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return nil, errors.New("minio access key and secret key are required")
	}

	mc, err := newMinioClient(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
		Region: c.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	bucket := c.Bucket
	if bucket == "" {
		bucket = "userservice"
	}

	publicURL := c.PublicURL
	if publicURL == "" {
		scheme := "http://"
		if c.UseSSL {
			scheme = "https://"
		}
		publicURL = joinURL(scheme+c.Endpoint, bucket)
	}

	m := &Minio{client: mc, bucket: bucket, publicURL: publicURL}
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Minio) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (m *Minio) Save(ctx context.Context, name string, r io.Reader) error {
	key, err := cleanKey(name)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return storageErr("put", name, err)
	}
	return nil
}

func (m *Minio) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := cleanKey(name)
	if err != nil {
		return nil, err
	}
	// GetObject is lazy, stat first so a missing key is reported here
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMinioNotFound(err) {
			return nil, fmt.Errorf("open %s: %w", name, common.ErrorNotFound)
		}
		return nil, storageErr("stat", name, err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageErr("get", name, err)
	}
	return obj, nil
}

func (m *Minio) Exists(ctx context.Context, name string) (bool, error) {
	key, err := cleanKey(name)
	if err != nil {
		return false, err
	}
	_, err = m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, storageErr("stat", name, err)
	}
	return true, nil
}

func (m *Minio) Delete(ctx context.Context, name string) error {
	key, err := cleanKey(name)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return storageErr("delete", name, err)
	}
	return nil
}

func (m *Minio) URL(name string) string {
	return joinURL(m.publicURL, name)
}

func isMinioNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
