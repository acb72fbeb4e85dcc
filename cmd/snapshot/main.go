// Command snapshot publishes the local catalogue database to R2, or
// installs the published one, using the same settings as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/config"
	"github.com/lumnam/lumnam-linebot-go/internal/logger"
	"github.com/lumnam/lumnam-linebot-go/internal/r2client"
	"github.com/lumnam/lumnam-linebot-go/internal/snapshot"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

var (
	actionFlag  = flag.String("action", "publish", "publish (upload local database) or install (download published one)")
	keyFlag     = flag.String("key", "", "object key (default: R2_SNAPSHOT_KEY)")
	timeoutFlag = flag.Duration("timeout", 5*time.Minute, "overall deadline")
)

type action int

const (
	actionPublish action = iota
	actionInstall
)

func parseAction(s string) (action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "publish", "upload":
		return actionPublish, nil
	case "install", "download":
		return actionInstall, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

func main() {
	flag.Parse()

	act, err := parseAction(*actionFlag)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if !cfg.HasR2() {
		log.Error("R2 is not configured (R2_ENDPOINT, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME)")
		os.Exit(1)
	}
	key := cfg.R2SnapshotKey
	if *keyFlag != "" {
		key = *keyFlag
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2Endpoint,
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create R2 client")
		os.Exit(1)
	}
	manager := snapshot.New(client, key)
	log = log.WithField("key", key).WithField("path", cfg.SQLitePath())

	start := time.Now()
	switch act {
	case actionPublish:
		err = publish(ctx, manager, cfg, log)
	case actionInstall:
		err = install(ctx, manager, cfg, log)
	}
	if err != nil {
		log.WithError(err).Error("Snapshot failed")
		os.Exit(1)
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Snapshot done")
}

func publish(ctx context.Context, m *snapshot.Manager, cfg *config.Config, log *logger.Logger) error {
	if _, err := os.Stat(cfg.SQLitePath()); err != nil {
		return fmt.Errorf("local database: %w", err)
	}
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	counts, err := db.CountCatalogue(ctx)
	if err != nil {
		return err
	}
	if counts["attraction"] == 0 {
		return errors.New("refusing to publish a catalogue without attractions")
	}

	etag, err := m.Publish(ctx, db, cfg.DataDir)
	if err != nil {
		return err
	}
	log.WithField("etag", etag).WithField("catalogue", counts).Info("Catalogue snapshot published")
	return nil
}

func install(ctx context.Context, m *snapshot.Manager, cfg *config.Config, log *logger.Logger) error {
	etag, updated, err := m.Install(ctx, cfg.SQLitePath())
	if err != nil {
		return err
	}
	log.WithField("etag", etag).WithField("updated", updated).Info("Catalogue snapshot installed")
	return nil
}
