package documents

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newMemS3() *memS3 {
	return &memS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (m *memS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.failPut != nil {
		return nil, m.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Key)] = data
	m.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	api := newMemS3()
	s := NewS3Store(api, "legaltrack", "/docs/")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "case_1_a_x.pdf", []byte("%PDF"), "application/pdf"))
	require.NoError(t, s.Put(ctx, "case_2_b_y.pdf", []byte("%PDF-2"), ""))

	got, err := s.Get(ctx, "case_1_a_x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(got))
	assert.Equal(t, "application/octet-stream", api.types["docs/case_2_b_y.pdf"])

	names, err := s.List(ctx, "case_1_")
	require.NoError(t, err)
	assert.Equal(t, []string{"case_1_a_x.pdf"}, names)

	require.NoError(t, s.Delete(ctx, "case_1_a_x.pdf"))
	_, err = s.Get(ctx, "case_1_a_x.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_PutError(t *testing.T) {
	api := newMemS3()
	api.failPut = errors.New("access denied")
	s := NewS3Store(api, "b", "")

	err := s.Put(context.Background(), "x.pdf", []byte("%PDF"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestCache_OverS3(t *testing.T) {
	dl := &fakeDownloader{data: []byte("%PDF-1.5"), contentType: "application/pdf"}
	c := NewCache(dl, NewS3Store(newMemS3(), "b", "pdf"), logging.Nop())
	ctx := context.Background()

	_, name, err := c.Fetch(ctx, 3, "doc", "https://example.org/3.pdf")
	require.NoError(t, err)

	data, cachedName, ok := c.Cached(ctx, 3, "doc")
	require.True(t, ok)
	assert.Equal(t, name, cachedName)
	assert.Equal(t, "%PDF-1.5", string(data))
}

func TestNewS3Client_CustomEndpoint(t *testing.T) {
	c, err := NewS3Client(context.Background(), S3Config{
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(c.Options().BaseEndpoint))
	assert.True(t, c.Options().UsePathStyle)
}
