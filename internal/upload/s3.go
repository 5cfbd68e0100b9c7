package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DefaultTimeout bounds a single object upload.
const DefaultTimeout = 10 * time.Second

// ErrNoBucket is returned by New when no bucket is configured.
var ErrNoBucket = errors.New("upload: no bucket configured")

// Config describes the S3-compatible target.
type Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

// ConfigFromEnv fills credentials and any unset target fields from
// S3_ACCESS_KEY, S3_SECRET_KEY, S3_REGION, S3_ENDPOINT and S3_BUCKET.
func ConfigFromEnv(c Config) Config {
	if c.AccessKey == "" {
		c.AccessKey = os.Getenv("S3_ACCESS_KEY")
	}
	if c.SecretKey == "" {
		c.SecretKey = os.Getenv("S3_SECRET_KEY")
	}
	if c.Region == "" {
		c.Region = os.Getenv("S3_REGION")
	}
	if c.Endpoint == "" {
		c.Endpoint = os.Getenv("S3_ENDPOINT")
	}
	if c.Bucket == "" {
		c.Bucket = os.Getenv("S3_BUCKET")
	}
	return c
}

// putter is the part of the S3 client the uploader uses.
type putter interface {
	PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Uploader pushes rendered images to a bucket.
type Uploader struct {
	client putter
	cfg    Config
}

// New opens an S3 session for cfg.
func New(cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("upload: session: %w", err)
	}
	return &Uploader{client: s3.New(sess), cfg: cfg}, nil
}

// Key returns the object key for a file name.
func (u *Uploader) Key(name string) string {
	return path.Join(u.cfg.Prefix, filepath.ToSlash(name))
}

// Put uploads data under key with a content type taken from its extension.
func (u *Uploader) Put(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := int64(len(data))
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload: put %s: %w", key, err)
	}
	return nil
}

// PutFile uploads a local file under name, a slash-separated path relative
// to the prefix. Callers pass the path relative to their output root so
// files with the same base name in different directories stay distinct.
func (u *Uploader) PutFile(ctx context.Context, file, name string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("upload: read %s: %w", file, err)
	}
	key := u.Key(name)
	return key, u.Put(ctx, key, data)
}
