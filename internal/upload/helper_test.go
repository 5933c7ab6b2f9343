package upload_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/internal/upload"
	"github.com/stretchr/testify/mock"
)

type clientMock struct {
	mock.Mock
}

func (c *clientMock) From(bucket string) upload.Bucket {
	args := c.Called(bucket)
	return args.Get(0).(upload.Bucket)
}

type bucketMock struct {
	mock.Mock
}

func (b *bucketMock) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	args := b.Called(ctx, path, data, contentType)
	return args.Error(0)
}

func (b *bucketMock) PublicURL(path string) (string, error) {
	args := b.Called(path)
	return args.String(0), args.Error(1)
}

// factoryRecorder is a ClientFactory that remembers how it was called.
type factoryRecorder struct {
	mu       sync.Mutex
	calls    int
	endpoint string
	apiKey   string
	client   upload.Client
	err      error
}

func (f *factoryRecorder) Factory(endpoint string, apiKey string) (upload.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.endpoint = endpoint
	f.apiKey = apiKey
	return f.client, f.err
}

func (f *factoryRecorder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memoryStore is a concurrency-safe in-memory Client.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) From(bucket string) upload.Bucket {
	return &memoryBucket{store: m, bucket: bucket}
}

func (m *memoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type memoryBucket struct {
	store  *memoryStore
	bucket string
}

func (b *memoryBucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.objects[b.bucket+"/"+path] = data
	return nil
}

func (b *memoryBucket) PublicURL(path string) (string, error) {
	return "https://cdn.example.com/" + b.bucket + "/" + path, nil
}

var validCreds = upload.Credentials{
	Endpoint: "https://test.supabase.co",
	APIKey:   "test_key",
}

func noBreakerParam() upload.Param {
	param := upload.DefaultParam()
	param.Breaker.Enabled = false
	return param
}

func newEnabledUploaderForTest(t *testing.T, client upload.Client, param upload.Param) *upload.Uploader {
	t.Helper()
	factory := &factoryRecorder{client: client}
	u := upload.NewUploader(validCreds, factory.Factory, param, &metadata.NoopSink{})
	if !u.IsConfigured() {
		t.Fatal("expected uploader to be configured")
	}
	return u
}

// panickingClient blows up as soon as a bucket is selected.
type panickingClient struct{}

func (panickingClient) From(bucket string) upload.Bucket {
	panic("bucket selector exploded")
}
