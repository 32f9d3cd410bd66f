package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/hoangnk/clubslots/internal/domain"
)

// LiveCountChannel broadcasts pool totals to subscribers after every
// ledger-affecting mutation. Delivery is at-least-once; messages carry the
// absolute total, so consumers apply set-to-latest semantics and tolerate
// duplicates and reordering.
type LiveCountChannel struct {
	rdb     *redis.Client
	channel string
}

func NewLiveCountChannel(rdb *redis.Client) *LiveCountChannel {
	return &LiveCountChannel{
		rdb:     rdb,
		channel: ChannelCountChanged(),
	}
}

type countChangedMsg struct {
	EventID uuid.UUID   `json:"event_id"`
	Pool    domain.Pool `json:"pool"`
	Total   int         `json:"total"`
	TsUnix  int64       `json:"ts_unix"`
}

func (p *LiveCountChannel) PublishCount(
	ctx context.Context,
	eventID uuid.UUID,
	pool domain.Pool,
	total int,
) error {
	msg := countChangedMsg{
		EventID: eventID,
		Pool:    pool,
		Total:   total,
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *LiveCountChannel) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, eventID uuid.UUID, pool domain.Pool, total int),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg countChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil &&
				msg.EventID != uuid.Nil && msg.Pool.Valid() {
				handler(ctx, msg.EventID, msg.Pool, msg.Total)
			}
		}
	}
}
