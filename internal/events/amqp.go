package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// DefaultExchange is the topic exchange widget events are published on.
const DefaultExchange = "seher.events"

// AMQPPublisher publishes JSON messages to a durable topic exchange with
// publisher confirms.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *logging.Logger
}

// DialAMQP connects and declares the exchange.
func DialAMQP(url, exchange string, logger *logging.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = logging.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, exchange: exchange, logger: logger}, nil
}

// Publish sends body under routing key and waits for the broker confirm.
func (p *AMQPPublisher) Publish(ctx context.Context, key string, body any) error {
	msg, err := publishing(body, time.Now())
	if err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("events: confirm mode: %w", err)
	}
	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, msg)
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", key, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("events: await confirm %s: %w", key, err)
	}
	if !acked {
		return fmt.Errorf("events: publish %s: nacked by broker", key)
	}
	p.logger.Debug("published", "key", key, "exchange", p.exchange, "message_id", msg.MessageId)
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

func publishing(body any, now time.Time) (amqp.Publishing, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("events: marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         data,
	}, nil
}
