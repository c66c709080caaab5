package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/gymdesk/internal/app/storage/memory"
	cfgpkg "github.com/fatflowers/gymdesk/pkg/config"
)

func TestNewStore_Memory(t *testing.T) {
	log := zap.NewNop().Sugar()
	cfg := &cfgpkg.Config{Database: cfgpkg.DBConfig{Driver: cfgpkg.DBDriverMemory}}

	gdb, err := NewDB(log, cfg)
	require.NoError(t, err)
	require.Nil(t, gdb)
	require.NoError(t, AutoMigrate(log, gdb))

	st, err := NewStore(log, cfg, gdb)
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, st)
}

func TestNewStore_PostgresWithoutPool(t *testing.T) {
	cfg := &cfgpkg.Config{Database: cfgpkg.DBConfig{Driver: cfgpkg.DBDriverPostgres}}
	_, err := NewStore(zap.NewNop().Sugar(), cfg, nil)
	require.Error(t, err)
}

func TestNewDB_EmptyDSN(t *testing.T) {
	cfg := &cfgpkg.Config{Database: cfgpkg.DBConfig{Driver: cfgpkg.DBDriverPostgres}}
	_, err := NewDB(zap.NewNop().Sugar(), cfg)
	require.Error(t, err)
}
