package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/storage/storagetest"
)

func TestVerifyAllSeededCatalogue(t *testing.T) {
	t.Parallel()

	results := verifyAll(context.Background(), storagetest.NewDB(t))
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.passed, "%s: %s", r.name, r.message)
	}
}

func TestVerifyTablesEmptyCatalogue(t *testing.T) {
	t.Parallel()

	db, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	results := verifyTables(context.Background(), db)
	require.Len(t, results, len(requiredTables))
	for _, r := range results {
		assert.False(t, r.passed, r.name)
		assert.Equal(t, "0 rows", r.message)
	}
}
