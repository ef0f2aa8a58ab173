package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenboard/eco-intake/internal/adapter/repo/postgres"
	"github.com/greenboard/eco-intake/internal/config"
)

func TestNewPool_AppliesConfiguredSizing(t *testing.T) {
	t.Parallel()
	cfg := config.Config{
		DBURL:             "postgres://u:p@localhost:5432/app",
		DBMaxConns:        7,
		DBConnMaxIdleTime: time.Minute,
	}
	// Construction is lazy; no connection is attempted here.
	pool, err := postgres.NewPool(context.Background(), cfg)
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, int32(7), pool.Config().MaxConns)
	assert.Equal(t, time.Minute, pool.Config().MaxConnIdleTime)
}

func TestNewPool_BadDSN(t *testing.T) {
	t.Parallel()
	_, err := postgres.NewPool(context.Background(), config.Config{DBURL: "://not-a-dsn"})
	require.Error(t, err)
}
