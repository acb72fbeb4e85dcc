package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/r2client"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/storage/storagetest"
)

type memoryBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	etags     map[string]string
	version   int
	downloads int
	headErr   error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}, etags: map[string]string{}}
}

func (b *memoryBucket) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.version++
	b.objects[key] = data
	b.etags[key] = fmt.Sprintf("etag-%d", b.version)
	return b.etags[key], nil
}

func (b *memoryBucket) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, "", r2client.ErrNotFound
	}
	b.downloads++
	return io.NopCloser(bytes.NewReader(data)), b.etags[key], nil
}

func (b *memoryBucket) HeadObject(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.headErr != nil {
		return "", b.headErr
	}
	if _, ok := b.objects[key]; !ok {
		return "", r2client.ErrNotFound
	}
	return b.etags[key], nil
}

const testKey = "snapshots/lumnambot.db.zst"

func TestPublishThenInstall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryBucket()
	m := New(bucket, testKey)

	src := storagetest.NewDB(t)
	etag, err := m.Publish(ctx, src, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)

	dbPath := filepath.Join(t.TempDir(), "data", "lumnambot.db")
	got, updated, err := m.Install(ctx, dbPath)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, etag, got)
	assert.Equal(t, etag, readETag(dbPath))

	db, err := storage.New(dbPath)
	require.NoError(t, err)
	want, err := src.CountCatalogue(ctx)
	require.NoError(t, err)
	counts, err := db.CountCatalogue(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, counts)
	require.NoError(t, db.Close())

	// Unchanged remote: no second download.
	_, updated, err = m.Install(ctx, dbPath)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 1, bucket.downloads)

	// New version replaces the file.
	_, err = m.Publish(ctx, src, t.TempDir())
	require.NoError(t, err)
	got, updated, err = m.Install(ctx, dbPath)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "etag-2", got)
}

func TestInstallErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()
		m := New(newMemoryBucket(), testKey)
		_, _, err := m.Install(ctx, filepath.Join(t.TempDir(), "x.db"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bucket unavailable", func(t *testing.T) {
		t.Parallel()
		bucket := newMemoryBucket()
		bucket.headErr = errors.New("connection refused")
		_, _, err := New(bucket, testKey).Install(ctx, filepath.Join(t.TempDir(), "x.db"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("not sqlite", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		plain := filepath.Join(dir, "plain.txt")
		packed := plain + ".zst"
		require.NoError(t, os.WriteFile(plain, []byte("not a database at all"), 0o644))
		require.NoError(t, r2client.CompressFile(plain, packed))
		data, err := os.ReadFile(packed)
		require.NoError(t, err)

		bucket := newMemoryBucket()
		_, err = bucket.Upload(ctx, testKey, bytes.NewReader(data), contentType)
		require.NoError(t, err)

		dbPath := filepath.Join(dir, "lumnambot.db")
		_, _, err = New(bucket, testKey).Install(ctx, dbPath)
		assert.ErrorIs(t, err, ErrNotSQLite)
		assert.False(t, fileExists(dbPath))

		leftovers, err := filepath.Glob(filepath.Join(dir, ".snapshot-*"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})
}
