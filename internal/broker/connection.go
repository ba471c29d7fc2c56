package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Config is the connection configuration read from RabbitMq:{Host,Username,Password}.
type Config struct {
	Host     string
	Username string
	Password string
}

func (c Config) url() string {
	user := c.Username
	if user == "" {
		user = "guest"
	}
	pass := c.Password
	if pass == "" {
		pass = "guest"
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", user, pass, host)
}

// maxConnectAttempts bounds the exponential backoff used on startup
// (spec §4.3: initial 2s, doubling, capped at 5 attempts).
const maxConnectAttempts = 5

// Connect dials RabbitMQ with exponential backoff (initial 2s, doubling,
// capped at 5 attempts) and declares the durable topology idempotently.
// If every attempt fails, the error returned is meant to be treated as
// fatal by the caller (the worker process exits non-zero per spec §4.3).
func Connect(ctx context.Context, cfg Config) (*amqp.Connection, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0 // bounded by attempt count below, not elapsed time

	var conn *amqp.Connection
	attempt := 0
	operation := func() error {
		attempt++
		amqpCfg := amqp.Config{
			Heartbeat:  10 * time.Second,
			Properties: amqp.Table{"connection_name": "taskflow"},
		}
		c, err := amqp.DialConfig(cfg.url(), amqpCfg)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("rabbitmq connect attempt failed")
			if attempt >= maxConnectAttempts {
				return backoff.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", attempt, err)
	}

	if err := declareTopology(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	log.Ctx(ctx).Info().Str("host", cfg.Host).Msg("rabbitmq connected and topology declared")
	return conn, nil
}

// declareTopology idempotently declares the exchange/queues/bindings
// described in spec §4.3 / §6.3, including DLQ dead-lettering so a
// nack(requeue=false) on QueueDue routes to QueueDLQ automatically.
func declareTopology(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ExchangeTasksEvents, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeTasksEvents, err)
	}
	if err := ch.ExchangeDeclare(dlqExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dlx %s: %w", dlqExchange, err)
	}

	dueQueueArgs := amqp.Table{
		"x-dead-letter-exchange":    dlqExchange,
		"x-dead-letter-routing-key": dlqRoutingKey,
	}
	if _, err := ch.QueueDeclare(QueueDue, true, false, false, false, dueQueueArgs); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDue, err)
	}
	if err := ch.QueueBind(QueueDue, RoutingKeyTaskDue, ExchangeTasksEvents, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueDue, err)
	}

	if _, err := ch.QueueDeclare(QueueDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
	}
	if err := ch.QueueBind(QueueDLQ, dlqRoutingKey, dlqExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueDLQ, err)
	}

	return nil
}
