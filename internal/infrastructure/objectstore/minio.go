package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/platelens/backend/internal/domain"
)

// Config holds configuration for the MinIO object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Storage stores uploaded menu images in a MinIO bucket.
type Storage struct {
	client *minio.Client
	bucket string
}

// New creates a MinIO-backed storage and ensures the bucket exists.
func New(ctx context.Context, config Config) (*Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	storage := &Storage{client: client, bucket: config.Bucket}
	if err := storage.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *Storage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: checking bucket: %v", domain.ErrStorageFailure, err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: creating bucket %s: %v", domain.ErrStorageFailure, s.bucket, err)
	}
	log.Printf("[STORAGE] created bucket %s", s.bucket)
	return nil
}

// Store uploads image bytes under a unique object name and returns an
// opaque locator of the form "minio://<bucket>/<object>".
func (s *Storage) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("uploads/%s.%s", uuid.NewString(), extensionFor(contentType))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading %s: %v", domain.ErrStorageFailure, objectName, err)
	}

	return fmt.Sprintf("minio://%s/%s", s.bucket, objectName), nil
}

// PresignedURL returns a temporary read URL for a stored object.
func (s *Storage) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presigning %s: %v", domain.ErrStorageFailure, objectName, err)
	}
	return u.String(), nil
}

// Delete removes a stored object.
func (s *Storage) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", domain.ErrStorageFailure, objectName, err)
	}
	return nil
}

// extensionFor maps an image content type to a file extension, defaulting
// to jpg.
func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
