package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig configures a self-hosted S3-compatible store whose bucket stays
// private; URLs are presigned.
type MinIOConfig struct {
	Endpoint  string // host:port, scheme optional
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	URLExpiry time.Duration
}

type MinIO struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio storage: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = time.Hour
	}

	secure := strings.HasPrefix(cfg.Endpoint, "https://")
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	m := &MinIO{client: client, bucket: cfg.Bucket, expiry: cfg.URLExpiry}
	if err := m.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIO) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k := cleanKey(key)
	if k == "" || k == "." {
		return "", ErrInvalidKey
	}
	_, err := m.client.PutObject(ctx, m.bucket, k, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", k, err)
	}
	return k, nil
}

func (m *MinIO) Delete(ctx context.Context, ref string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, cleanKey(ref), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object %s: %w", ref, err)
	}
	return nil
}

// URL presigns a GET for the object. Signing is local since the region is
// fixed, so no request is made.
func (m *MinIO) URL(ref string) string {
	if ref == "" {
		return ""
	}
	u, err := m.client.PresignedGetObject(context.Background(), m.bucket, cleanKey(ref), m.expiry, url.Values{})
	if err != nil {
		return ""
	}
	return u.String()
}

func (m *MinIO) Ping(ctx context.Context) error {
	if _, err := m.client.BucketExists(ctx, m.bucket); err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", m.bucket, err)
	}
	return nil
}
