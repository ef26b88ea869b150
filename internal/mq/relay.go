/*
Package mq mirrors global coordinator notifications onto a RabbitMQ topic
exchange, so services without a WebSocket connection can observe lobby
lifecycle.  Only a single connection is used to save resources.
*/
package mq

import (
	"context"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const exchange = "lobbyd"

// publishWait bounds how long a publish may block on a slow broker.
const publishWait = 5 * time.Second

type Relay struct {
	log     *slog.Logger
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

/*
Dial connects to RabbitMQ, opens a channel and declares the lobbyd topic
exchange.  Consumers bind their own queues against it.
*/
func Dial(log *slog.Logger, url string) (*Relay, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", false, true, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Relay{log: log, conn: conn, channel: ch}, nil
}

/*
Publish publishes a raw frame under the given routing key.  Fire-and-forget:
a failed publish is logged, never surfaced to the coordinator.
*/
func (r *Relay) Publish(routingKey string, raw []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishWait)
	defer cancel()

	err := r.channel.PublishWithContext(
		ctx,
		exchange,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			Body:        raw,
			ContentType: "application/json",
		},
	)
	if err != nil {
		r.log.Error("cannot publish to relay", "key", routingKey, "error", err)
	}
}

func (r *Relay) Close() {
	r.channel.Close()
	r.conn.Close()
}
