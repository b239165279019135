package s3infra

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/infrastructure/awsconfig"
)

// Store wraps the S3 operations used for site images and the gated asset.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewClient creates an S3 client. Against LocalStack it switches to path-style addressing.
func NewClient(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.Load(ctx, cfg, "")
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(cfg)
		o.UsePathStyle = o.BaseEndpoint != nil
	}), nil
}

// NewStore creates a Store for bucket. publicBaseURL prefixes the URLs returned
// for uploaded images; when empty the virtual-hosted S3 URL is used.
func NewStore(client *s3.Client, bucket, publicBaseURL string) *Store {
	return &Store{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload streams r to S3 under key.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// PresignedURL generates a time-limited presigned GET URL for the given key.
func (s *Store) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

// PublicURL returns the address browsers use to fetch key.
func (s *Store) PublicURL(key string) string {
	return PublicURL(s.publicBaseURL, s.bucket, key)
}

func PublicURL(baseURL, bucket, key string) string {
	key = strings.TrimLeft(key, "/")
	if baseURL != "" {
		return baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}
