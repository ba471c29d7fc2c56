package broker

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Consumer reads TaskDueV1 events off QueueDue with manual acknowledgement.
// A message that fails to deserialize or process is nacked without requeue,
// which RabbitMQ routes to QueueDLQ via the queue's dead-letter arguments.
type Consumer struct {
	ch *amqp.Channel
}

// NewConsumer opens a dedicated channel on conn with prefetch 1, so a slow
// or stuck handler never starves other consumers on QueueDue.
func NewConsumer(conn *amqp.Connection) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, err
	}
	return &Consumer{ch: ch}, nil
}

// Close closes the underlying channel.
func (c *Consumer) Close() error {
	return c.ch.Close()
}

// Run consumes QueueDue until ctx is cancelled. Every delivery is handled
// synchronously and acked/nacked before the next is fetched.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, QueueDue, "taskflow-worker", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var evt TaskDueV1
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("messageId", d.MessageId).Msg("failed to deserialize task due event, routing to dead letter queue")
		_ = d.Nack(false, false)
		return
	}

	log.Ctx(ctx).Info().
		Str("taskId", evt.TaskID.String()).
		Str("messageId", d.MessageId).
		Msgf("Hi your Task is due %s", evt.Title)

	if err := d.Ack(false); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("messageId", d.MessageId).Msg("ack failed")
	}
}
