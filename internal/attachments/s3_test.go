package attachments

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 is an in-memory bucket serving two keys per list page
type fakeS3 struct {
	mu       sync.Mutex
	bucket   string
	objects  map[string][]byte
	modified map[string]time.Time
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{bucket: bucket, objects: map[string][]byte{}, modified: map[string]time.Time{}}
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if aws.ToString(in.Bucket) != f.bucket {
		return nil, &s3types.NoSuchBucket{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.modified[aws.ToString(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	delete(f.modified, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) && k > aws.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(keys) > 2 {
		keys = keys[:2]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k), LastModified: aws.Time(f.modified[k])})
	}
	return out, nil
}

func newS3TestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3("records")
	cfg := testConfig(t.TempDir())
	cfg.Driver = "s3"
	store := NewWithBackend(newS3Backend(fake, "records"), cfg, zap.NewNop())
	require.NoError(t, store.Prepare(context.Background()))
	return store, fake
}

func TestS3SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store, fake := newS3TestStore(t)

	url, err := store.Save(ctx, Signatures, []byte("sig"), "sig.png")
	require.NoError(t, err)

	_, name, ok := store.Resolve(url)
	require.True(t, ok)
	require.Equal(t, []byte("sig"), fake.objects["signatures/"+name])

	store.Delete(ctx, url)
	require.Empty(t, fake.objects)
}

func TestS3ListPagesAndOrphans(t *testing.T) {
	ctx := context.Background()
	store, _ := newS3TestStore(t)

	var urls []string
	for i := 0; i < 5; i++ {
		url, err := store.Save(ctx, Studies, []byte("doc"), "doc.pdf")
		require.NoError(t, err)
		urls = append(urls, url)
	}
	_, err := store.Save(ctx, Signatures, []byte("sig"), "sig.png")
	require.NoError(t, err)

	referenced := map[string]bool{urls[0]: true, urls[1]: true}
	orphans, err := store.Orphans(ctx, Studies, referenced, time.Now())
	require.NoError(t, err)
	require.ElementsMatch(t, urls[2:], orphans)

	orphans, err = store.Orphans(ctx, Studies, referenced, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Empty(t, orphans)
}

func TestS3PrepareChecksBucket(t *testing.T) {
	backend := newS3Backend(newFakeS3("other"), "records")
	require.Error(t, backend.Prepare(context.Background(), Studies))
}

func TestNewS3BackendRequiresBucket(t *testing.T) {
	_, err := NewS3Backend(context.Background(), config.S3Config{Region: "us-east-1"})
	require.Error(t, err)
}
