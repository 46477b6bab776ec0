package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps uploaded images in a MinIO bucket. Object keys use the
// same timestamp naming as the disk store so stored paths stay uniform.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates the client and ensures the bucket exists.
func NewMinIOStore(cfg *MinIOConfig) (*MinIOStore, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStore{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// tolerate "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStore) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := fmt.Sprintf("%d%s", time.Now().UnixNano(), strings.ToLower(filepath.Ext(filename)))
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return path.Join(s.bucket, key), nil
}

func (s *MinIOStore) Remove(ctx context.Context, p string) error {
	key := strings.TrimPrefix(p, s.bucket+"/")
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
