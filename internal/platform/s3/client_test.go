package s3

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory S3 implementation covering what the secret
// store uses.
type fakeAPI struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	failPuts int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{buckets: map[string]map[string][]byte{}}
}

type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func (f *fakeAPI) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := *params.Bucket
	if _, ok := f.buckets[name]; ok {
		return nil, &apiError{code: "BucketAlreadyOwnedByYou"}
	}
	f.buckets[name] = map[string][]byte{}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeAPI) HeadBucket(_ context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[*params.Bucket]; !ok {
		return nil, &apiError{code: "NotFound"}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeAPI) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPuts > 0 {
		f.failPuts--
		return nil, &apiError{code: "AccessDenied"}
	}
	bucket, ok := f.buckets[*params.Bucket]
	if !ok {
		return nil, &apiError{code: "NoSuchBucket"}
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	bucket[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bucket, ok := f.buckets[*params.Bucket]
	if !ok {
		return nil, &apiError{code: "NoSuchBucket"}
	}
	data, ok := bucket[*params.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bucket, ok := f.buckets[*params.Bucket]
	if !ok {
		return nil, &apiError{code: "NoSuchBucket"}
	}
	var contents []s3types.Object
	for key := range bucket {
		if params.Prefix != nil && !bytes.HasPrefix([]byte(key), []byte(*params.Prefix)) {
			continue
		}
		k := key
		contents = append(contents, s3types.Object{Key: &k})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bucket, ok := f.buckets[*params.Bucket]; ok {
		delete(bucket, *params.Key)
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) DeleteBucket(_ context.Context, params *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[*params.Bucket]; !ok {
		return nil, &apiError{code: "NoSuchBucket"}
	}
	delete(f.buckets, *params.Bucket)
	return &s3.DeleteBucketOutput{}, nil
}

func testClient(api *fakeAPI) *Client {
	return &Client{s3: api, bucket: "pgha-secrets"}
}

func TestEnsureBucket(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	// Second call hits BucketAlreadyOwnedByYou and still succeeds.
	require.NoError(t, c.EnsureBucket(ctx))
}

func TestPutGetSecret(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	require.NoError(t, c.PutSecret(ctx, "cluster/abc123/admin-password", "s3cr3t"))

	got, err := c.GetSecret(ctx, "cluster/abc123/admin-password")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", got)
}

func TestGetSecret_Missing(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))

	_, err := c.GetSecret(ctx, "cluster/abc123/missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDeleteSecret_MissingIsNoError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	assert.NoError(t, c.DeleteSecret(ctx, "cluster/abc123/missing"))
}

func TestListSecrets_PrefixFilter(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	require.NoError(t, c.PutSecret(ctx, "cluster/abc123/admin-password", "a"))
	require.NoError(t, c.PutSecret(ctx, "cluster/abc123/repl-password", "b"))
	require.NoError(t, c.PutSecret(ctx, "cluster/other999/admin-password", "c"))

	keys, err := c.ListSecrets(ctx, "cluster/abc123/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestDeletePrefix(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	require.NoError(t, c.PutSecret(ctx, "cluster/abc123/admin-password", "a"))
	require.NoError(t, c.PutSecret(ctx, "cluster/abc123/repl-password", "b"))

	require.NoError(t, c.DeletePrefix(ctx, "cluster/abc123/"))

	keys, err := c.ListSecrets(ctx, "cluster/abc123/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestConfirmWriteAccess_SucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)
	ctx := context.Background()

	require.NoError(t, c.EnsureBucket(ctx))
	api.failPuts = 1

	err := c.ConfirmWriteAccess(ctx, 10*time.Second)
	require.NoError(t, err)
}

func TestConfirmWriteAccess_TimesOut(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	c := testClient(api)

	// Bucket never created, every probe write fails.
	err := c.ConfirmWriteAccess(context.Background(), 100*time.Millisecond)
	require.Error(t, err)
}

func TestIsBucketAlreadyOwnedByYou(t *testing.T) {
	t.Parallel()

	assert.True(t, isBucketAlreadyOwnedByYou(&apiError{code: "BucketAlreadyOwnedByYou"}))
	assert.True(t, isBucketAlreadyOwnedByYou(&apiError{code: "BucketAlreadyExists"}))
	assert.True(t, isBucketAlreadyOwnedByYou(&s3types.BucketAlreadyOwnedByYou{}))
	assert.False(t, isBucketAlreadyOwnedByYou(&apiError{code: "AccessDenied"}))
	assert.False(t, isBucketAlreadyOwnedByYou(nil))
}
