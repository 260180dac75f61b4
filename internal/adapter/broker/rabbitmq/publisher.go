package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher implements ports.EventPublisher over a RabbitMQ topic exchange.
// Outbox events are published with their kind as the routing key, so
// consumers can bind to e.g. "intent.*" or a single kind.
type Publisher struct {
	cfg config.RabbitConfig
	log zerolog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the exchange.
func NewPublisher(cfg config.RabbitConfig, log zerolog.Logger) (*Publisher, error) {
	p := &Publisher{cfg: cfg, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Str("exchange", cfg.Exchange).
		Msg("RabbitMQ connection established")

	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL())
	if err != nil {
		return fmt.Errorf("dialing rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		p.cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declaring exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	return nil
}

// Publish sends one outbox event to the exchange. On a closed channel it
// reconnects once and retries; the outbox dispatcher re-delivers on failure,
// so losing a single attempt is safe.
func (p *Publisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := p.publish(ctx, event); err != nil {
		p.log.Warn().Err(err).Str("event_kind", event.Kind).Msg("publish failed, reconnecting")
		if rerr := p.reconnect(); rerr != nil {
			return fmt.Errorf("reconnecting after publish failure: %w", rerr)
		}
		return p.publish(ctx, event)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	ch := p.channel
	p.mu.Unlock()

	if ch == nil {
		return fmt.Errorf("channel is not initialized")
	}

	err := ch.PublishWithContext(ctx,
		p.cfg.Exchange,
		event.Kind, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Timestamp:    event.CreatedAt,
			Body:         event.Payload,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing event %s: %w", event.Kind, err)
	}
	return nil
}

func (p *Publisher) reconnect() error {
	p.mu.Lock()
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.mu.Unlock()

	return p.connect()
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}

	p.log.Info().Msg("RabbitMQ publisher closed")
}
