package upload

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store persists uploaded images and returns where they were put
type Store interface {
	Save(ctx context.Context, name string, contentType string, data []byte) (string, error)
}

// LocalStore writes uploads into a directory
type LocalStore struct {
	dir string
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates dir when missing
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes data to dir/name, name must already be a secure file name
func (s *LocalStore) Save(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	fname := filepath.Join(s.dir, name)
	if err := os.WriteFile(fname, data, 0o644); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return filepath.ToSlash(fname), nil
}

// S3Store puts uploads in a bucket under a key prefix
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

var _ Store = (*S3Store)(nil)

type S3Option func(*S3Store)

func WithS3Prefix(prefix string) S3Option {
	return func(s *S3Store) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithPublicURL makes Save return publicURL/key instead of an s3:// URI, e.g. a CDN origin
func WithPublicURL(u string) S3Option {
	return func(s *S3Store) {
		s.publicURL = strings.TrimRight(u, "/")
	}
}

func NewS3Store(clt *s3.Client, bucket string, opts ...S3Option) *S3Store {
	ret := &S3Store{client: clt, bucket: bucket}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// NewS3Client loads the default AWS configuration. endpoint overrides the service endpoint
// and switches to path style addressing, for S3 compatible stores.
func NewS3Client(ctx context.Context, region string, endpoint string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Store) Save(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
