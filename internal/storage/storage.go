package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rakitcita/platform-service/internal/config"
)

// Uploader stores uploaded media and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, objectName string) error
}

// MinIOUploader implements Uploader on a MinIO (S3-compatible) bucket.
type MinIOUploader struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewMinIOUploader(cfg config.StorageConfig) (*MinIOUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOUploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (u *MinIOUploader) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	reader := bytes.NewReader(data)
	_, err := u.client.PutObject(ctx, u.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", u.publicBaseURL, u.bucket, objectName), nil
}

func (u *MinIOUploader) Remove(ctx context.Context, objectName string) error {
	if err := u.client.RemoveObject(ctx, u.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
