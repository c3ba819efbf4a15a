package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	cfg "github.com/dom/contacts-api/internal/config"
)

// AvatarStore persists uploaded avatar images and returns a public URL.
// Failures never block the flow that triggered the upload; the user simply
// keeps a null avatar.
type AvatarStore interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

type s3AvatarStore struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewS3AvatarStore builds a client against an S3-compatible endpoint (AWS or
// MinIO, depending on config).
func NewS3AvatarStore(c *cfg.Config) (AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3AccessKey,
			c.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3AvatarStore{
		client:   client,
		bucket:   c.S3Bucket,
		endpoint: c.S3Endpoint,
	}, nil
}

func (s *s3AvatarStore) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	key := storageKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

func storageKey() string {
	d := time.Now()
	return fmt.Sprintf("avatars/%d/%02d/%v", d.Year(), int(d.Month()), uuid.New())
}
