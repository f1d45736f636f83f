package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is a document stored in an S3 bucket, read with ranged GetObject calls
type S3 struct {
	ctx     context.Context
	bucket  string
	key     string
	client  *s3.Client
	offset  int64
	size    int64
	modTime time.Time
	mu      sync.Mutex
	Content
}

var (
	_ Source  = (*S3)(nil)
	_ fs.File = (*S3)(nil)
)

type S3Option func(*S3)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3) {
		s.bucket = bucket
	}
}

func WithS3Key(key string) S3Option {
	return func(s *S3) {
		s.key = key
	}
}

func WithS3Client(clt *s3.Client) S3Option {
	return func(s *S3) {
		s.client = clt
	}
}

// NewS3 creates a new S3 document. ctx bounds every subsequent read.
func NewS3(ctx context.Context, opts ...S3Option) (*S3, error) {
	ret := &S3{ctx: ctx}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.client == nil {
		return nil, errors.New("s3 client not configured")
	}
	headObjOutput, err := ret.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ret.bucket),
		Key:    aws.String(ret.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}
	ret.size = aws.ToInt64(headObjOutput.ContentLength)
	ret.modTime = aws.ToTime(headObjOutput.LastModified)
	ret.Content.meta = map[string]string{
		MetaSource: fmt.Sprintf("s3://%s/%s", ret.bucket, ret.key),
		"bucket":   ret.bucket,
		"key":      ret.key,
	}
	return ret, nil
}

func (s *S3) Name() string {
	return path.Base(s.key)
}

// Read implements the io.Reader interface.
func (s *S3) Read(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offset >= s.size {
		return 0, io.EOF
	}
	n, err = s.readRange(p, s.offset)
	s.offset += int64(n)
	return n, err
}

// ReadAt implements the io.ReaderAt interface.
func (s *S3) ReadAt(p []byte, off int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if off >= s.size {
		return 0, io.EOF
	}
	return s.readRange(p, off)
}

func (s *S3) readRange(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	end := min(off+int64(len(p)), s.size) - 1
	resp, err := s.client.GetObject(s.ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer resp.Body.Close()
	n, err := io.ReadFull(resp.Body, p[:end-off+1])
	if err == nil && end+1 == s.size && int64(len(p)) > end-off+1 {
		err = io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

// Close implements the fs.File interface.
func (s *S3) Close() error {
	return nil
}

// Stat implements the fs.File interface.
func (s *S3) Stat() (os.FileInfo, error) {
	return &FileInfo{
		name:    s.Name(),
		size:    s.size,
		mode:    0o444,
		modTime: s.modTime,
	}, nil
}

func (s *S3) Size() int64 {
	return s.size
}

// FileInfo describes a remote object
type FileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

var _ fs.FileInfo = (*FileInfo)(nil)

func (f *FileInfo) Name() string       { return f.name }
func (f *FileInfo) Size() int64        { return f.size }
func (f *FileInfo) Mode() fs.FileMode  { return f.mode }
func (f *FileInfo) ModTime() time.Time { return f.modTime }
func (f *FileInfo) IsDir() bool        { return false }
func (f *FileInfo) Sys() any           { return nil }
