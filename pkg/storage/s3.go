package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

type bucket struct {
	client      *s3.Client
	bucket      string
	region      string
	maxListSize int32
	logger      *slog.Logger
}

// NewS3 creates a storage system over an S3-compatible bucket (AWS or MinIO).
// Like the Azure backend, bins are key prefixes inside one bucket. Static
// credentials are used when an access key is configured; otherwise the
// default AWS credential chain applies.
func NewS3(cfg *Config, logger *slog.Logger) (System, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &bucket{
		client:      client,
		bucket:      cfg.ContainerName,
		region:      cfg.Region,
		maxListSize: cfg.MaxListSize,
		logger:      logger.With("system", "storage", "backend", BackendS3),
	}, nil
}

func (b *bucket) Start(lc *lifecycle.Coordinator) error {
	b.logger.Info("starting storage system")
	ctx := lc.Context()

	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err == nil {
		b.logger.Info("storage bucket ready", "bucket", b.bucket)
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	if b.region != "" && b.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, input); err != nil && !hasCode(err, "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("initialize storage bucket: %w", err)
	}

	b.logger.Info("storage bucket created", "bucket", b.bucket)
	return nil
}

// Ensure validates the names only; prefixes exist implicitly in a bucket.
func (b *bucket) Ensure(ctx context.Context, containers ...string) error {
	return validate(containers...)
}

func (b *bucket) Stage(ctx context.Context, name string, r io.Reader) error {
	if err := validateKey(name); err != nil {
		return err
	}
	return b.put(ctx, key(StagingArea, name), r)
}

func (b *bucket) Commit(ctx context.Context, name, container string) error {
	if err := validate(name, container); err != nil {
		return err
	}
	if container == StagingArea {
		return ErrInvalidKey
	}

	staged := key(StagingArea, name)
	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		CopySource: aws.String((&url.URL{Path: b.bucket + "/" + staged}).EscapedPath()),
		Key:        aws.String(key(container, name)),
	})
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("commit %s to %s: %w", name, container, err)
	}

	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(staged),
	}); err != nil {
		b.logger.Warn("staged object not removed after commit", "name", name, "error", err)
	}

	return nil
}

func (b *bucket) Discard(ctx context.Context, name string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	staged := key(StagingArea, name)

	// DeleteObject succeeds for missing keys, so existence is checked first.
	if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(staged),
	}); err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("discard %s: %w", name, err)
	}

	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(staged),
	}); err != nil {
		return fmt.Errorf("discard %s: %w", name, err)
	}

	return nil
}

func (b *bucket) List(ctx context.Context, container string) ([]Object, error) {
	if err := validateKey(container); err != nil {
		return nil, err
	}

	prefix := container + "/"
	pager := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(b.maxListSize),
	})

	objects := make([]Object, 0)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", container, err)
		}

		for _, item := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(item.Key), prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			objects = append(objects, Object{
				Name:       name,
				Size:       aws.ToInt64(item.Size),
				ModifiedAt: aws.ToTime(item.LastModified),
			})
		}
	}

	return objects, nil
}

func (b *bucket) Open(ctx context.Context, container, name string) (io.ReadCloser, error) {
	if err := validate(container, name); err != nil {
		return nil, err
	}

	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key(container, name)),
	})
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s/%s: %w", container, name, err)
	}

	return out.Body, nil
}

// put buffers r so the request body is seekable and carries a content length.
// Uploads are bounded by the ingest size limit.
func (b *bucket) put(ctx context.Context, k string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read object %s: %w", k, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct := mime.TypeByExtension(path.Ext(k)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", k, err)
	}
	return nil
}

func notFound(err error) bool {
	return hasCode(err, "NoSuchKey", "NotFound")
}

func hasCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, c := range codes {
		if apiErr.ErrorCode() == c {
			return true
		}
	}
	return false
}
