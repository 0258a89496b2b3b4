package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// BookingConfirmed is broadcast after a submission has been recorded.
type BookingConfirmed struct {
	Reference string `json:"reference"`
	VenueID   string `json:"venue_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	TsUnix    int64  `json:"ts_unix"`
}

type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: ChannelBookingConfirmed(),
	}
}

func (p *BookingsPubSub) PublishBookingConfirmed(ctx context.Context, msg BookingConfirmed) error {
	if msg.TsUnix == 0 {
		msg.TsUnix = time.Now().Unix()
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks until ctx is done, calling handler for every well-formed message.
func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, msg BookingConfirmed)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// Wait for the subscription to be registered before reading.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg BookingConfirmed
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil && msg.Reference != "" {
				handler(ctx, msg)
			}
		}
	}
}
