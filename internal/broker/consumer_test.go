package broker

import (
	"context"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeAcknowledger struct {
	mu           sync.Mutex
	acked        bool
	nacked       bool
	nackRequeue  bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = true
	f.nackRequeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

// TestConsumerNacksWithoutRequeueOnMalformedBody covers scenario S6: a
// non-JSON delivery is nacked without requeue (routing it to the DLQ via
// the queue's dead-letter arguments) and never acked.
func TestConsumerNacksWithoutRequeueOnMalformedBody(t *testing.T) {
	c := &Consumer{}
	ack := &fakeAcknowledger{}
	delivery := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte("not json"),
		MessageId:    "poison-1",
	}

	c.handle(context.Background(), delivery)

	if ack.acked {
		t.Fatalf("malformed delivery must not be acked")
	}
	if !ack.nacked {
		t.Fatalf("expected delivery to be nacked")
	}
	if ack.nackRequeue {
		t.Fatalf("expected nack without requeue so the broker dead-letters it")
	}
}

func TestConsumerAcksWellFormedDelivery(t *testing.T) {
	c := &Consumer{}
	ack := &fakeAcknowledger{}
	delivery := amqp.Delivery{
		Acknowledger: ack,
		Body:         []byte(`{"taskId":"11111111-1111-1111-1111-111111111111","title":"T1","dueDateUtc":"2030-01-01T00:00:00Z","timestampUtc":"2030-01-01T00:00:00Z"}`),
		MessageId:    "ok-1",
	}

	c.handle(context.Background(), delivery)

	if !ack.acked {
		t.Fatalf("expected well-formed delivery to be acked")
	}
	if ack.nacked {
		t.Fatalf("well-formed delivery must not be nacked")
	}
}
