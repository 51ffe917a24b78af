package analytics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSink_Record(t *testing.T) {
	_, client := setupRedis(t)
	sink := NewRedisSink(client, "", 100)
	ctx := context.Background()

	ev := NewEvent(EventContextDerived, map[string]any{"zone": "arid", "known": 3})
	require.NoError(t, sink.Record(ctx, ev))

	msgs, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, ev.ID, msgs[0].Values["id"])
	assert.Equal(t, EventContextDerived, msgs[0].Values["name"])

	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["properties"].(string)), &props))
	assert.Equal(t, "arid", props["zone"])
}

func TestRedisSink_ServerDown(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	err := NewRedisSink(client, "events", 0).Record(context.Background(), NewEvent("x", nil))
	assert.Error(t, err)
}
