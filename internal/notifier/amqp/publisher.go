// Package amqp delivers notifications through RabbitMQ. One message is
// published per recipient so consumers can bind per-profile queues.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hoangnk/clubslots/internal/notifier"
)

const (
	exchangeName = "clubslots.notifications"
	exchangeKind = "topic"
)

type envelope struct {
	ProfileID uuid.UUID      `json:"profile_id"`
	Event     notifier.Event `json:"event"`
}

// Publisher implements notifier.Notifier on top of an AMQP topic exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	const op = "amqp.NewPublisher"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: channel: %w", op, err)
	}

	if err := ch.ExchangeDeclare(exchangeName, exchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: exchange declare: %w", op, err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish fans ev out to every profile in profileIDs. Routing key is
// "notify.<profile-id>" so consumers can subscribe to a single profile or
// to "notify.#".
func (p *Publisher) Publish(ctx context.Context, profileIDs []uuid.UUID, ev notifier.Event) error {
	const op = "amqp.Publisher.Publish"

	for _, id := range profileIDs {
		body, err := json.Marshal(envelope{ProfileID: id, Event: ev})
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}

		err = p.channel.PublishWithContext(ctx,
			exchangeName,
			"notify."+id.String(),
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        body,
			},
		)
		if err != nil {
			return fmt.Errorf("%s: publish: %w", op, err)
		}
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
