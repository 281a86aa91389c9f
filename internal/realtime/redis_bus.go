package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamline/backend/internal/domain"
)

// tripChannelPrefix namespaces the pub/sub channel for one trip's room.
const tripChannelPrefix = "trip:"

// tripChannelPattern matches every trip channel; the single subscriber
// connection receives all rooms and the local registry filters by trip.
const tripChannelPattern = tripChannelPrefix + "*"

// RedisBus carries broadcast events over Redis pub/sub so that viewers
// connected to different API nodes share one broadcast domain. Each trip
// gets its own channel; every node subscribes to all of them and forwards
// received events to its local broadcaster.
type RedisBus struct {
	client *redis.Client
	b      *Broadcaster
	log    *slog.Logger
}

// NewRedisBus connects to Redis at redisURL and returns a bus that forwards
// received events to b. The connection is verified before returning.
func NewRedisBus(redisURL string, b *Broadcaster, log *slog.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("realtime.NewRedisBus: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("realtime.NewRedisBus: connect: %w", err)
	}

	return NewRedisBusWithClient(client, b, log), nil
}

// NewRedisBusWithClient builds a bus from an existing Redis client.
// Used by tests that run against miniredis.
func NewRedisBusWithClient(client *redis.Client, b *Broadcaster, log *slog.Logger) *RedisBus {
	return &RedisBus{client: client, b: b, log: log}
}

// Publish encodes evt and publishes it on the trip's channel. Every
// subscribed node, including this one, delivers it to its local room members.
func (r *RedisBus) Publish(ctx context.Context, evt domain.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("realtime.RedisBus.Publish: encode: %w", err)
	}

	channel := tripChannelPrefix + evt.TripID.String()
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("realtime.RedisBus.Publish: %w", err)
	}
	return nil
}

// Run subscribes to all trip channels and forwards received events to the
// local broadcaster until ctx is cancelled. Malformed payloads are logged
// and skipped; the reconciliation fetch covers anything a client misses.
func (r *RedisBus) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, tripChannelPattern)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.log.Warn("dropping malformed broadcast payload", "channel", msg.Channel, "error", err)
				continue
			}
			r.b.Publish(evt.TripID, evt)
		}
	}
}

// Close releases the underlying Redis client.
func (r *RedisBus) Close() error {
	return r.client.Close()
}
