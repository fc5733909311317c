package database

import (
	"context"
	"testing"

	"mergington-activities/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestRedisClient_PingAndClose(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	require.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.GetClient())
	assert.NoError(t, client.Close())
}

func TestRedisClient_PingFailsWhenServerGone(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()

	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestRedisClient_CloseNilClient(t *testing.T) {
	assert.NoError(t, (&RedisClient{}).Close())
}
