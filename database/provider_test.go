package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sessiond/config"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestProvideDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
	}

	db, err := ProvideDatabase(cfg, WithModels(&widget{}), nil)

	require.NoError(t, err)
	require.NotNil(t, db)
	assert.True(t, db.Migrator().HasTable(&widget{}))
}

func TestProvideDatabaseNoMigration(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: false,
		},
	}

	db, err := ProvideDatabase(cfg, WithModels(&widget{}), nil)

	require.NoError(t, err)
	assert.False(t, db.Migrator().HasTable(&widget{}))
}

func TestProvideDatabaseUnsupportedDriver(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: "oracle",
			DSN:    "whatever",
		},
	}

	db, err := ProvideDatabase(cfg, nil, nil)

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
