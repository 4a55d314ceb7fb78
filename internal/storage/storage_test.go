package storage

import (
	"context"
	"path/filepath"
	"testing"

	"restobackend/internal/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenSQLiteURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resto.db")
	store, closeFn, err := Open(context.Background(), "sqlite://"+path, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	assert.IsType(t, &sqlite.Store{}, store)
	configs, err := store.ListPlatformConfigs(context.Background())
	require.NoError(t, err)
	assert.Len(t, configs, 4)
}

func TestOpenPostgresURLFailsFast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Open(ctx, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", zap.NewNop())
	assert.Error(t, err)
}
