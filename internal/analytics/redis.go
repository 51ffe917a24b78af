package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// DefaultStream is the Redis stream events are appended to.
const DefaultStream = "intake:events"

// RedisSink appends events to a Redis stream with XADD.
type RedisSink struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisSink creates a sink over client. An empty stream uses
// DefaultStream; maxLen > 0 trims the stream approximately.
func NewRedisSink(client redis.Cmdable, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

// Record implements Sink.
func (s *RedisSink) Record(ctx context.Context, ev Event) error {
	props, err := json.Marshal(ev.Properties)
	if err != nil {
		return eris.Wrap(err, "analytics: marshal properties")
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":         ev.ID,
			"name":       ev.Name,
			"properties": string(props),
			"timestamp":  ev.Timestamp.Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return eris.Wrapf(err, "analytics: xadd %s", s.stream)
	}
	return nil
}
