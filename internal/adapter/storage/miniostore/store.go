// Package miniostore stores CV documents in an S3-compatible object store.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Store implements domain.ObjectStore backed by MinIO.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg config.Config) (*Store, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("op=miniostore.new: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("op=miniostore.bucket_exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("op=miniostore.make_bucket: %w", err)
		}
		slog.Info("bucket created", slog.String("bucket", cfg.MinioBucket))
	}
	return &Store{client: client, bucket: cfg.MinioBucket}, nil
}

// BucketExists reports whether the named bucket is reachable.
func (s *Store) BucketExists(ctx domain.Context, bucket string) (bool, error) {
	return s.client.BucketExists(ctx, bucket)
}

// Put uploads the file at srcPath under key.
func (s *Store) Put(ctx domain.Context, key, srcPath, contentType string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, srcPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("op=miniostore.put key=%s: %w", key, err)
	}
	return nil
}

// FetchToFile downloads the object under key to destPath.
func (s *Store) FetchToFile(ctx domain.Context, key, destPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return fmt.Errorf("op=miniostore.fetch key=%s: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("op=miniostore.fetch key=%s: %w", key, err)
	}
	return nil
}

// Remove deletes the object under key. Removing a missing key is not an error.
func (s *Store) Remove(ctx domain.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("op=miniostore.remove key=%s: %w", key, err)
	}
	return nil
}
