package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher publishes TaskDueV1 events to ExchangeTasksEvents. Channels are
// not safe for concurrent use, hence the mutex.
type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

// NewPublisher opens a dedicated channel on conn for publishing.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

// Close closes the underlying channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishTaskDue publishes evt as a persistent message to
// ExchangeTasksEvents/RoutingKeyTaskDue. A publish failure is logged and
// returned without a retry: the message is treated as lost, since the
// claim that produced it has already been committed.
func (p *Publisher) PublishTaskDue(ctx context.Context, evt TaskDueV1) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal task due event: %w", err)
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, ExchangeTasksEvents, RoutingKeyTaskDue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.TaskID.String(),
		Body:         body,
	})
	p.mu.Unlock()

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("taskId", evt.TaskID.String()).Msg("publish task due event failed, message considered lost")
		return err
	}
	return nil
}
