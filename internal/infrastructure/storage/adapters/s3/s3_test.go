package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/storage"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/mocks"
)

type object struct {
	body        []byte
	contentType string
	meta        map[string]string
}

// fakeAPI keeps objects in memory, keyed by bucket/key
type fakeAPI struct {
	mu      sync.Mutex
	buckets map[string]map[string]object
	created []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{buckets: map[string]map[string]object{}}
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &s3types.NoSuchBucket{}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b[aws.ToString(in.Key)] = object{body: data, contentType: aws.ToString(in.ContentType), meta: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.buckets[aws.ToString(in.Bucket)][aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.body)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.body))),
		Metadata:      obj.meta,
	}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[aws.ToString(in.Bucket)][aws.ToString(in.Key)]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.buckets[aws.ToString(in.Bucket)], aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.buckets[aws.ToString(in.Bucket)] {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(f.buckets[aws.ToString(in.Bucket)][k].body))),
		})
	}
	return out, nil
}

func (f *fakeAPI) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[aws.ToString(in.Bucket)]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeAPI) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.Bucket)
	if _, ok := f.buckets[name]; ok {
		return nil, &s3types.BucketAlreadyOwnedByYou{}
	}
	f.buckets[name] = map[string]object{}
	f.created = append(f.created, name)
	return &s3.CreateBucketOutput{}, nil
}

func newTestClient(api API) *Client {
	cfg := config.DefaultStorageConfig()
	cfg.Provider = "s3"
	cfg.Bucket = "drive-fetch"
	return NewWithAPI(api, cfg, mocks.NewNopLogger(), mocks.NewNopMetrics())
}

func TestClient_CreateBucket(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(api)
	ctx := context.Background()

	require.NoError(t, c.CreateBucket(ctx, ""))
	require.NoError(t, c.CreateBucket(ctx, "drive-fetch"))

	assert.Equal(t, []string{"drive-fetch"}, api.created)
}

func TestClient_PutOpenList(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(api)
	ctx := context.Background()
	require.NoError(t, c.CreateBucket(ctx, "drive-fetch"))

	err := c.Put(ctx, "", "abc_report.pdf", strings.NewReader("%PDF"), storage.Attributes{
		ContentType: "application/pdf",
		Tags:        map[string]string{"filename": "report.pdf"},
	})
	require.NoError(t, err)

	obj, err := c.Open(ctx, "drive-fetch", "abc_report.pdf")
	require.NoError(t, err)
	defer obj.Close()

	data, _ := io.ReadAll(obj)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "abc_report.pdf", obj.Key)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, int64(4), obj.Size)
	assert.Equal(t, "report.pdf", obj.Tags["filename"])

	objects, err := c.List(ctx, "", "abc_")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "abc_report.pdf", objects[0].Key)
	assert.Equal(t, int64(4), objects[0].Size)

	exists, err := c.Exists(ctx, "", "abc_report.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "", "abc_report.pdf"))
	exists, err = c.Exists(ctx, "", "abc_report.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_NotFound(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(api)
	ctx := context.Background()
	require.NoError(t, c.CreateBucket(ctx, ""))

	_, err := c.Open(ctx, "", "missing")
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))

	exists, err := c.Exists(ctx, "", "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_PutIntoMissingBucket(t *testing.T) {
	c := newTestClient(newFakeAPI())

	err := c.Put(context.Background(), "", "k", strings.NewReader("v"), storage.Attributes{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrObjectNotFound))
}

func TestSized(t *testing.T) {
	rs, n, err := sized(bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	data, _ := io.ReadAll(rs)
	assert.Equal(t, "hello", string(data))

	_, n, err = sized(io.LimitReader(strings.NewReader("hello world"), 5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
