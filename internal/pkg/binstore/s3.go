package binstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// S3Config configures the S3-compatible provider.
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint enables S3-compatible services; empty means AWS.
	Endpoint string
	// PublicBaseURL is prepended to object keys to form retrieval URLs.
	// Empty means the standard virtual-hosted AWS URL.
	PublicBaseURL string
	// KeyPrefix namespaces uploaded objects inside the bucket.
	KeyPrefix string
}

// S3Store implements Store on an S3 bucket. The object key doubles as the
// delete token, so DeleteByToken is naturally idempotent.
type S3Store struct {
	config   S3Config
	client   *s3.S3
	uploader *s3manager.Uploader
}

// NewS3Store creates a new S3Store
func NewS3Store(config S3Config) (*S3Store, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if config.Region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" && config.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		config:   config,
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// Upload stores the file under a fresh key and returns its public URL. The
// returned delete token is the object key.
func (s *S3Store) Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	key := s.objectKey(fileName)

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload failed: %w", err)
	}

	return &UploadResult{URL: s.publicURL(key), DeleteToken: key}, nil
}

// DeleteByToken removes the object named by the token. Deleting a key that no
// longer exists succeeds.
func (s *S3Store) DeleteByToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(token),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

func (s *S3Store) objectKey(fileName string) string {
	key := uuid.New().String() + strings.ToLower(filepath.Ext(fileName))
	if s.config.KeyPrefix != "" {
		key = strings.TrimSuffix(s.config.KeyPrefix, "/") + "/" + key
	}
	return key
}

func (s *S3Store) publicURL(key string) string {
	if s.config.PublicBaseURL != "" {
		return strings.TrimSuffix(s.config.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, key)
}
