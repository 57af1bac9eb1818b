package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner issues time-limited download links for stored objects.
type Presigner interface {
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// S3Client presigns GET requests against a single bucket.
type S3Client struct {
	presign *s3.PresignClient
	bucket  string
}

func NewS3Client(cfg aws.Config, bucket string) *S3Client {
	return &S3Client{
		presign: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:  bucket,
	}
}

func (c *S3Client) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}
