// Package s3 stores cluster secrets in an S3-compatible object store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/larsan/pgha/internal/metrics"
)

// api is the subset of the S3 client the secret store uses.
type api interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// Client wraps an S3-compatible object store as a cluster secret store.
type Client struct {
	s3       api
	bucket   string
	recorder *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithAPI replaces the underlying S3 client (useful for testing).
func WithAPI(a api) Option {
	return func(c *Client) { c.s3 = a }
}

// WithMetrics attaches a metrics recorder. Nil is allowed.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a secret store client for the given endpoint and
// bucket. Hetzner Object Storage uses virtual-hosted style addressing.
func NewClient(endpoint, region, accessKey, secretKey, bucket string, opts ...Option) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := &Client{
		s3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = false
		}),
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) count(operation string) {
	c.recorder.CountCall("s3", operation)
}

// EnsureBucket creates the secrets bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	c.count("create_bucket")
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// ConfirmWriteAccess polls until a probe object can be written and read
// back, or the deadline passes. Freshly created buckets can take a
// moment to become writable.
func (c *Client) ConfirmWriteAccess(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	const probeKey = ".pgha-write-probe"
	probe := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var lastErr error
	for {
		lastErr = c.probeWrite(ctx, probeKey, probe)
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("bucket %s not writable: %w (last error: %v)", c.bucket, ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

func (c *Client) probeWrite(ctx context.Context, key string, payload []byte) error {
	if err := c.put(ctx, key, payload); err != nil {
		return err
	}
	got, err := c.get(ctx, key)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, payload) {
		return errors.New("probe object read back with different content")
	}
	c.count("delete_object")
	_, _ = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return nil
}

// PutSecret stores a secret value under the given key.
func (c *Client) PutSecret(ctx context.Context, key, value string) error {
	return c.put(ctx, key, []byte(value))
}

// GetSecret retrieves the secret value stored under the given key.
func (c *Client) GetSecret(ctx context.Context, key string) (string, error) {
	data, err := c.get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeleteSecret removes the secret stored under the given key. Deleting
// a missing secret is not an error.
func (c *Client) DeleteSecret(ctx context.Context, key string) error {
	c.count("delete_object")
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete secret %s: %w", key, err)
	}
	return nil
}

// ListSecrets returns the keys of all secrets under the given prefix.
func (c *Client) ListSecrets(ctx context.Context, prefix string) ([]string, error) {
	c.count("list_objects")
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	result, err := c.s3.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets in bucket %s: %w", c.bucket, err)
	}

	var keys []string
	for _, obj := range result.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// DeletePrefix removes every secret under the given prefix.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := c.ListSecrets(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := c.DeleteSecret(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBucket deletes the secrets bucket. The bucket must be empty.
func (c *Client) DeleteBucket(ctx context.Context) error {
	c.count("delete_bucket")
	_, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete bucket %s: %w", c.bucket, err)
	}
	return nil
}

func (c *Client) put(ctx context.Context, key string, data []byte) error {
	c.count("put_object")
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	c.count("get_object")
	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", key, c.bucket, err)
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// isBucketAlreadyOwnedByYou checks for the bucket-exists family of
// errors, falling back to API error codes for S3-compatible services
// that do not return the exact SDK error types.
func isBucketAlreadyOwnedByYou(err error) bool {
	if err == nil {
		return false
	}

	var baoby *types.BucketAlreadyOwnedByYou
	if errors.As(err, &baoby) {
		return true
	}
	var bae *types.BucketAlreadyExists
	if errors.As(err, &bae) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists"
	}
	return false
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "NoSuchKey" || code == "404"
	}
	return false
}

// IsNotFound reports whether the error indicates a missing secret or
// bucket.
func IsNotFound(err error) bool {
	return isNotFoundError(err)
}
