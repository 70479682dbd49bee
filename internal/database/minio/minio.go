package minio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"advisory-service/internal/config"
	"advisory-service/internal/database"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// MinioClient archives uploaded soil reports.
type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

// Storage names the buckets the advisory service writes to.
var Storage = struct {
	SoilReports string
}{
	SoilReports: "soil-reports",
}

var BucketNames = []string{
	Storage.SoilReports,
}

func endpointOf(cfg config.MinioConfig) (string, bool) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.MinioURL, "http://"), "https://")
	secure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		log.Printf("Invalid MINIO_SECURE value %q, using plain HTTP", cfg.MinioSecure)
		secure = false
	}
	return endpoint, secure
}

// NewMinioClient connects, waiting for the server to come up, then prepares every bucket
// with its retention rule.
func NewMinioClient(ctx context.Context, cfg config.MinioConfig) (*MinioClient, error) {
	endpoint, secure := endpointOf(cfg)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: secure,
		Region: cfg.MinioLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	err = database.ConnectWithRetry(ctx, "minio", 3, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_, err := client.ListBuckets(pingCtx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO at %s unreachable: %w", endpoint, err)
	}
	log.Printf("Connected to MinIO at %s (secure=%t)", endpoint, secure)

	mc := &MinioClient{client: client, config: cfg}
	for _, bucket := range BucketNames {
		if err := mc.prepareBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}
	return mc, nil
}

// prepareBucket creates the bucket if needed and expires its objects after RetentionDays.
func (mc *MinioClient) prepareBucket(ctx context.Context, bucket string) error {
	exists, err := mc.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := mc.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: mc.config.MinioLocation}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	if mc.config.RetentionDays <= 0 {
		return nil
	}
	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{{
		ID:         "expire-" + bucket,
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(mc.config.RetentionDays)},
	}}
	if err := mc.client.SetBucketLifecycle(ctx, bucket, rules); err != nil {
		// not fatal: some gateways do not support lifecycle rules
		log.Printf("failed to set retention on bucket %s: %v", bucket, err)
	}
	return nil
}

// UploadBytes stores data under objectName.
func (mc *MinioClient) UploadBytes(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)
	_, err := mc.client.PutObject(ctx, bucketName, objectName, reader, int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload bytes to %s in bucket %s: %w", objectName, bucketName, err)
	}

	log.Printf("Archived %d bytes as %s/%s", len(data), bucketName, objectName)
	return nil
}

// GetPresignedURL returns a time-limited download link for an archived object.
func (mc *MinioClient) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := mc.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s in bucket %s: %w", objectName, bucketName, err)
	}

	return presignedURL.String(), nil
}
