package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rohmanhakim/logo-crawler/internal/build"
	storage_go "github.com/supabase-community/storage-go"
)

const supabaseStoragePath = "/storage/v1"

// SupabaseFactory is the production ClientFactory. endpoint is the project
// URL (https://<ref>.supabase.co) or its storage API root.
func SupabaseFactory(endpoint string, apiKey string) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("supabase: api key is empty")
	}
	client := storage_go.NewClient(supabaseStorageURL(endpoint), apiKey, map[string]string{
		"apikey":        apiKey,
		"X-Client-Info": build.UserAgent(),
	})
	return &supabaseClient{client: client}, nil
}

func supabaseStorageURL(endpoint string) string {
	base := strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(base, supabaseStoragePath) {
		return base
	}
	return base + supabaseStoragePath
}

type supabaseClient struct {
	client *storage_go.Client
}

func (c *supabaseClient) From(bucket string) Bucket {
	return &supabaseBucket{client: c.client, bucket: bucket}
}

type supabaseBucket struct {
	client *storage_go.Client
	bucket string
}

// Upload does not overwrite: an existing object at path is reported as an
// error by the store.
func (b *supabaseBucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	_, err := b.client.UploadFile(b.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s/%s: %w", b.bucket, path, err)
	}
	return nil
}

func (b *supabaseBucket) PublicURL(path string) (string, error) {
	resp := b.client.GetPublicUrl(b.bucket, path)
	if resp.SignedURL == "" {
		return "", fmt.Errorf("supabase: no public url for %s/%s", b.bucket, path)
	}
	return resp.SignedURL, nil
}
