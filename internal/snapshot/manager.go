// Package snapshot installs the curated catalogue database from object
// storage before the server opens it, and publishes a new one.
//
// The object is a zstd-compressed SQLite file. The installed file's ETag is
// kept next to it so a restart with an unchanged snapshot skips the download.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lumnam/lumnam-linebot-go/internal/r2client"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// ErrNotFound indicates no snapshot exists in the bucket.
var ErrNotFound = errors.New("snapshot: not found")

// ErrNotSQLite is returned when the downloaded file is not a SQLite database.
var ErrNotSQLite = errors.New("snapshot: not a SQLite database")

const contentType = "application/zstd"

var sqliteHeader = []byte("SQLite format 3\x00")

// ObjectStore is the bucket the snapshot lives in.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	HeadObject(ctx context.Context, key string) (string, error)
}

// Manager moves the catalogue snapshot between the bucket and local disk.
type Manager struct {
	store ObjectStore
	key   string
}

// New creates a manager for the object at key.
func New(store ObjectStore, key string) *Manager {
	return &Manager{store: store, key: key}
}

// Install places the snapshot at dbPath, replacing any previous file, and
// returns its ETag. A local copy already at the remote ETag is kept.
func (m *Manager) Install(ctx context.Context, dbPath string) (etag string, updated bool, err error) {
	remote, err := m.store.HeadObject(ctx, m.key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return "", false, ErrNotFound
		}
		return "", false, fmt.Errorf("check snapshot: %w", err)
	}
	if remote != "" && remote == readETag(dbPath) && fileExists(dbPath) {
		slog.InfoContext(ctx, "Catalogue snapshot up to date", "etag", remote)
		return remote, false, nil
	}

	body, etag, err := m.store.Download(ctx, m.key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return "", false, ErrNotFound
		}
		return "", false, fmt.Errorf("download snapshot: %w", err)
	}
	defer body.Close()

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create data dir: %w", err)
	}
	// Same directory so the final rename is atomic.
	tmp := filepath.Join(dir, ".snapshot-"+uuid.NewString()+".db")
	if err := r2client.DecompressStream(body, tmp); err != nil {
		_ = os.Remove(tmp)
		return "", false, fmt.Errorf("decompress snapshot: %w", err)
	}
	if err := checkSQLite(tmp); err != nil {
		_ = os.Remove(tmp)
		return "", false, err
	}

	// Stale WAL files would be replayed into the new database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(tmp)
			return "", false, fmt.Errorf("remove %s: %w", suffix, err)
		}
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return "", false, fmt.Errorf("install snapshot: %w", err)
	}
	if err := os.WriteFile(etagPath(dbPath), []byte(etag), 0o644); err != nil {
		slog.WarnContext(ctx, "Failed to record snapshot ETag", "error", err)
	}

	slog.InfoContext(ctx, "Catalogue snapshot installed",
		"etag", etag,
		"path", dbPath)
	return etag, true, nil
}

// Publish uploads a compacted, compressed copy of db and returns the new ETag.
func (m *Manager) Publish(ctx context.Context, db *storage.DB, tempDir string) (string, error) {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	base := filepath.Join(tempDir, "publish-"+uuid.NewString())
	copyPath, packedPath := base+".db", base+".db.zst"
	defer os.Remove(copyPath)
	defer os.Remove(packedPath)

	if err := db.Snapshot(ctx, copyPath); err != nil {
		return "", err
	}
	if err := r2client.CompressFile(copyPath, packedPath); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	f, err := os.Open(packedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer f.Close()

	etag, err := m.store.Upload(ctx, m.key, f, contentType)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return etag, nil
}

func checkSQLite(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteHeader) {
		return ErrNotSQLite
	}
	return nil
}

func etagPath(dbPath string) string {
	return dbPath + ".etag"
}

func readETag(dbPath string) string {
	b, err := os.ReadFile(etagPath(dbPath))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
