package s3

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"genomecorrupt/internal/artifact"
)

// fakeClient is an in-memory bucket that pages List results two at a time.
type fakeClient struct {
	mu   sync.Mutex
	objs map[string][]byte
	ct   map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{objs: map[string][]byte{}, ct: map[string]string{}}
}

func (f *fakeClient) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objs[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(b)))}, nil
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objs[aws.ToString(in.Key)] = b
	f.ct[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	b, ok := f.objs[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String(f.ct[key]),
	}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objs {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := start + 2
	if end > len(keys) {
		end = len(keys)
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objs[k])))})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objs, aws.ToString(in.Key))
	delete(f.ct, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStorePutGetList(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeClient(), "bucket")
	require.Equal(t, artifact.DriverS3, s.Driver())

	for _, k := range []string{"run/a.csv", "run/b.jsonl", "run/c.txt", "other/x"} {
		_, err := s.Put(ctx, k, strings.NewReader("payload-"+k), artifact.PutOptions{ContentType: "text/plain"})
		require.NoError(t, err)
	}
	_, err := s.Put(ctx, "run/a.csv", strings.NewReader("again"), artifact.PutOptions{})
	require.ErrorIs(t, err, artifact.ErrExists)

	info, rc, err := s.Get(ctx, "run/b.jsonl")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "payload-run/b.jsonl", string(body))
	require.Equal(t, "text/plain", info.ContentType)
	require.Equal(t, int64(len(body)), info.Size)

	_, _, err = s.Get(ctx, "run/missing")
	require.ErrorIs(t, err, artifact.ErrNotFound)

	infos, err := s.List(ctx, "run/")
	require.NoError(t, err)
	require.Len(t, infos, 3)
	require.Equal(t, "run/c.txt", infos[2].Key)

	ok, err := s.Delete(ctx, "run/a.csv")
	require.NoError(t, err)
	require.True(t, ok)
	_, _, err = s.Get(ctx, "run/a.csv")
	require.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GENOMECORRUPT_S3_BUCKET", "datasets")
	t.Setenv("GENOMECORRUPT_S3_REGION", "eu-west-1")
	t.Setenv("GENOMECORRUPT_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("GENOMECORRUPT_S3_PATH_STYLE", "TRUE")

	cfg := ConfigFromEnv(Config{Region: "us-east-2"})
	require.Equal(t, Config{Bucket: "datasets", Region: "us-east-2", Endpoint: "http://localhost:9000", PathStyle: true}, cfg)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}
