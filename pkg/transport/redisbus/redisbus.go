// Package redisbus connects a [pipeline.Runner] to Redis pub/sub.
//
// The bus subscribes to an analysis channel carrying the same frames the
// HTTP API accepts, {"source": ..., "result": ...}, applies each one and
// publishes the resulting response to a graph channel. Messages are
// processed one at a time in arrival order, so the latest message wins.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	apperr "github.com/matzehuels/memlayout/pkg/errors"
	"github.com/matzehuels/memlayout/pkg/observability"
	"github.com/matzehuels/memlayout/pkg/pipeline"
	"github.com/matzehuels/memlayout/pkg/transport"
)

// Default channel names.
const (
	DefaultAnalysisChannel = "memlayout:analysis"
	DefaultGraphChannel    = "memlayout:graph"
)

// Options configures a [Bus].
type Options struct {
	AnalysisChannel string
	GraphChannel    string
}

func (o *Options) setDefaults() {
	if o.AnalysisChannel == "" {
		o.AnalysisChannel = DefaultAnalysisChannel
	}
	if o.GraphChannel == "" {
		o.GraphChannel = DefaultGraphChannel
	}
}

// Bus relays frames between Redis and a runner.
type Bus struct {
	client redis.UniversalClient
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options

	// publish sends one message. Replaced in tests.
	publish func(ctx context.Context, channel string, payload []byte) error
}

// New creates a bus. If logger is nil, the runner's logger is used.
func New(client redis.UniversalClient, runner *pipeline.Runner, logger *log.Logger, opts Options) *Bus {
	opts.setDefaults()
	if logger == nil {
		logger = runner.Logger
	}
	b := &Bus{client: client, runner: runner, logger: logger, opts: opts}
	b.publish = func(ctx context.Context, channel string, payload []byte) error {
		return client.Publish(ctx, channel, payload).Err()
	}
	return b
}

// Dial creates a client for addr and checks that the server answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperr.Wrap(apperr.ErrCodeTransport, err, "connect to redis at %s", addr)
	}
	return client, nil
}

// Run subscribes and relays messages until ctx is cancelled. A message that
// fails to publish is logged and dropped; Run only returns on subscription
// failure or cancellation.
func (b *Bus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.opts.AnalysisChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return apperr.Wrap(apperr.ErrCodeTransport, err, "subscribe to %s", b.opts.AnalysisChannel)
	}
	b.logger.Info("subscribed", "channel", b.opts.AnalysisChannel, "publish", b.opts.GraphChannel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := b.Handle(ctx, []byte(msg.Payload)); err != nil {
				b.logger.Error("relay failed", "channel", msg.Channel, "err", err)
			}
		}
	}
}

// Handle applies one frame and publishes the response. A payload that is
// not a frame is answered with an error response rather than dropped, so
// the publisher learns about it.
func (b *Bus) Handle(ctx context.Context, payload []byte) error {
	observability.Transport().OnReceive(ctx, b.opts.AnalysisChannel, len(payload))

	var resp any
	var f pipeline.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		err = apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode frame")
		b.logger.Warn("malformed frame", "err", err)
		resp = map[string]any{"error": pipeline.NewErrorBody(err)}
	} else {
		resp = b.runner.Recompute(ctx, f)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return b.send(ctx, data)
}

func (b *Bus) send(ctx context.Context, data []byte) error {
	start := time.Now()
	err := transport.RetryWithBackoff(ctx, func() error {
		if err := b.publish(ctx, b.opts.GraphChannel, data); err != nil {
			return transport.Retryable(fmt.Errorf("%w: %v", transport.ErrTransport, err))
		}
		return nil
	})
	if err != nil {
		observability.Transport().OnError(ctx, b.opts.GraphChannel, err)
		return apperr.Wrap(apperr.ErrCodeTransport, err, "publish to %s", b.opts.GraphChannel)
	}
	observability.Transport().OnPublish(ctx, b.opts.GraphChannel, len(data), time.Since(start))
	return nil
}
