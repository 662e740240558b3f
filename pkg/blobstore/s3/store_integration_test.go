//go:build cloudintegration

package s3

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
	"github.com/vellumworks/sheetglot/test/cloudtest"
)

func newMotoStore(t *testing.T, ctx context.Context) (*Store, string) {
	t.Helper()
	cloudtest.SkipIfUnavailable(t)

	bucket := cloudtest.CreateBucket(t, ctx)
	store, err := New(ctx, Config{
		Bucket:          bucket,
		Region:          cloudtest.Region,
		Endpoint:        cloudtest.Endpoint,
		AccessKeyID:     cloudtest.TestAccessKeyID,
		SecretAccessKey: cloudtest.TestSecretAccessKey,
		ForcePathStyle:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, bucket
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newMotoStore(t, ctx)

	body := []byte(`{"texts":["りんご","みかん"]}`)
	require.NoError(t, store.Put(ctx, "excel-work/job-1/batch_0.json", body))

	got, err := store.Get(ctx, "excel-work/job-1/batch_0.json")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	require.NoError(t, store.Delete(ctx, "excel-work/job-1/batch_0.json"))
	_, err = store.Get(ctx, "excel-work/job-1/batch_0.json")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// Deleting a missing key succeeds.
	assert.NoError(t, store.Delete(ctx, "excel-work/job-1/batch_0.json"))
}

func TestStore_ListAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store, bucket := newMotoStore(t, ctx)

	keys := []string{
		"excel-work/job-2/batch_0.json",
		"excel-work/job-2/batch_1.json",
		"excel-work/job-2/work_data.json",
		"excel-work/other/batch_0.json",
	}
	for _, key := range keys {
		cloudtest.PutObject(t, ctx, bucket, key, []byte("{}"))
	}

	listed, err := store.List(ctx, "excel-work/job-2/")
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	n, err := blobstore.DeletePrefix(ctx, store, "excel-work/job-2/")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	remaining, err := store.List(ctx, "excel-work/")
	require.NoError(t, err)
	assert.Equal(t, []string{"excel-work/other/batch_0.json"}, remaining)
}

func TestStore_PresignGet(t *testing.T) {
	ctx := context.Background()
	store, bucket := newMotoStore(t, ctx)

	cloudtest.PutObject(t, ctx, bucket, "translated/abc/report_translated.xlsx", []byte("data"))

	url, err := store.PresignGet(ctx, "translated/abc/report_translated.xlsx", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, cloudtest.Endpoint), "got %q", url)
	assert.Contains(t, url, "report_translated.xlsx")
	assert.Contains(t, url, "X-Amz-Expires")
}
