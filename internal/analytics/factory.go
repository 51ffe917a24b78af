package analytics

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// Options selects and configures a sink.
type Options struct {
	Kind        string // log|redis|webhook|none
	Stream      string
	StreamMax   int64
	WebhookURL  string
	RatePerSec  float64
	Burst       int
	Timeout     time.Duration
	RedisClient redis.Cmdable
}

// New builds the sink named by opts.Kind.
func New(opts Options) (Sink, error) {
	switch opts.Kind {
	case "", "log":
		return LogSink{}, nil
	case "none":
		return NopSink{}, nil
	case "redis":
		if opts.RedisClient == nil {
			return nil, eris.New("analytics: redis sink requires a redis client")
		}
		return NewRedisSink(opts.RedisClient, opts.Stream, opts.StreamMax), nil
	case "webhook":
		if opts.WebhookURL == "" {
			return nil, eris.New("analytics: webhook sink requires a url")
		}
		return NewWebhookSink(opts.WebhookURL, opts.RatePerSec, opts.Burst, opts.Timeout), nil
	default:
		return nil, eris.Errorf("analytics: unknown sink %q", opts.Kind)
	}
}
