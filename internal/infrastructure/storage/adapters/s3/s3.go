// Package s3 stores cache objects in an S3 (or S3-compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/infrastructure/storage/instrument"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

// API is the part of *s3.Client the adapter calls.
type API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type Client struct {
	api    API
	cfg    config.StorageConfig
	logger types.Logger
	rec    instrument.Recorder
}

var _ storage.ObjectStorage = (*Client)(nil)

// New connects to S3 with the storage settings and creates the configured
// bucket when it is missing.
func New(cfg config.StorageConfig, logger types.Logger, metrics types.Metrics) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}

	awsCfg, err := loadAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	// path-style addressing keeps MinIO and LocalStack endpoints working
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
	})
	c := NewWithAPI(api, cfg, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.CreateBucket(ctx, ""); err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "S3 storage ready", types.Fields{"bucket": cfg.Bucket, "region": cfg.S3.Region})
	return c, nil
}

// NewWithAPI wraps api, typically a fake in tests.
func NewWithAPI(api API, cfg config.StorageConfig, logger types.Logger, metrics types.Metrics) *Client {
	logger = logger.WithFields(types.Fields{"storage": "s3"})
	return &Client{
		api:    api,
		cfg:    cfg,
		logger: logger,
		rec:    instrument.Recorder{Backend: "s3", Logger: logger, Metrics: metrics},
	}
}

// CreateBucket is a no-op when HeadBucket finds the bucket.
func (c *Client) CreateBucket(ctx context.Context, bucket string) (err error) {
	bucket = c.resolve(bucket)
	defer c.rec.Start(ctx, "create_bucket", bucket, "")(&err)

	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	} else if !notFound(err) {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}

	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint
	if region := c.cfg.S3.Region; region != "" && region != "us-east-1" {
		in.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	_, err = c.api.CreateBucket(ctx, in)
	var exists *s3types.BucketAlreadyExists
	var owned *s3types.BucketAlreadyOwnedByYou
	if err == nil || errors.As(err, &exists) || errors.As(err, &owned) {
		return nil
	}
	return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
}

func (c *Client) Put(ctx context.Context, bucket, key string, body io.Reader, attrs storage.Attributes) (err error) {
	bucket = c.resolve(bucket)
	defer c.rec.Start(ctx, "put", bucket, key)(&err)

	rs, size, err := sized(body)
	if err != nil {
		return fmt.Errorf("failed to buffer %s: %w", key, err)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          rs,
		ContentLength: aws.Int64(size),
		Metadata:      attrs.Tags,
	}
	if attrs.ContentType != "" {
		in.ContentType = aws.String(attrs.ContentType)
	}

	if _, err := c.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	c.rec.Metrics.RecordFileSize(attrs.ContentType, size)
	return nil
}

func (c *Client) Open(ctx context.Context, bucket, key string) (obj *storage.Object, err error) {
	bucket = c.resolve(bucket)
	defer c.rec.Start(ctx, "get", bucket, key)(&err)

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if notFound(err) {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return &storage.Object{
		ReadCloser: out.Body,
		ObjectInfo: storage.ObjectInfo{
			Key:          key,
			Size:         aws.ToInt64(out.ContentLength),
			LastModified: aws.ToTime(out.LastModified),
		},
		Attributes: storage.Attributes{
			ContentType: aws.ToString(out.ContentType),
			Tags:        out.Metadata,
		},
	}, nil
}

func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	bucket = c.resolve(bucket)

	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		return true, nil
	case notFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to head %s: %w", key, err)
	}
}

// List follows ListObjectsV2 pagination to the end.
func (c *Client) List(ctx context.Context, bucket, prefix string) (objects []storage.ObjectInfo, err error) {
	bucket = c.resolve(bucket)
	defer c.rec.Start(ctx, "list", bucket, prefix)(&err)

	pages := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, err)
		}
		for _, o := range page.Contents {
			objects = append(objects, storage.ObjectInfo{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}
	return objects, nil
}

func (c *Client) Delete(ctx context.Context, bucket, key string) (err error) {
	bucket = c.resolve(bucket)
	defer c.rec.Start(ctx, "delete", bucket, key)(&err)

	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (c *Client) resolve(bucket string) string {
	if bucket == "" {
		return c.cfg.Bucket
	}
	return bucket
}

// sized returns a seekable body and its length, buffering r when it cannot
// seek. PutObject needs both to sign and retry the upload.
func sized(r io.Reader) (io.ReadSeeker, int64, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, 0, err
		}
		return bytes.NewReader(buf.Bytes()), int64(buf.Len()), nil
	}

	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	return rs, end, nil
}

func loadAWSConfig(cfg config.StorageConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3.Region))
	}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}
	return awsconfig.LoadDefaultConfig(context.Background(), opts...)
}

func notFound(err error) bool {
	if err == nil {
		return false
	}
	var (
		noKey    *s3types.NoSuchKey
		missing  *s3types.NotFound
		noBucket *s3types.NoSuchBucket
	)
	return errors.As(err, &noKey) || errors.As(err, &missing) || errors.As(err, &noBucket)
}
