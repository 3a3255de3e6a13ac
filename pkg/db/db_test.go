package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-cms/config"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db"), MaxOpen: 1}

	gdb, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		_ = sqlDB.Close()
	})

	assert.False(t, SupportsRowLocking(gdb))

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, AutoMigrate(gdb, &probe{}))
	assert.True(t, gdb.Migrator().HasTable("probe"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestHealthCheck_Uninitialized(t *testing.T) {
	old := DB
	DB = nil
	t.Cleanup(func() { DB = old })

	assert.Error(t, HealthCheck())
	assert.Error(t, AutoMigrate(nil))
}
