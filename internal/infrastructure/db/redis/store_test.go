package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newTestClient starts an in-process Redis server for the duration of the
// test and connects to it the way the service does.
func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr(), Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConnect_FailsWhenServerIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})

	require.Error(t, err)
	require.Nil(t, client)
}

func TestConnect_RequiresAddr(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	require.ErrorContains(t, err, "addr is required")
}

func TestPinger(t *testing.T) {
	client, mr := newTestClient(t)
	check := Pinger(client)

	require.NoError(t, check(context.Background()))

	mr.Close()
	require.ErrorContains(t, check(context.Background()), "redis ping")
}
