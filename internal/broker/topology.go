// Package broker owns the RabbitMQ connection, topology, publisher and
// consumer described in spec §4.3 / §6.3.
package broker

const (
	// ExchangeTasksEvents is the durable topic exchange all task events
	// publish through.
	ExchangeTasksEvents = "tasks.events"

	// QueueDue is the durable queue bound to RoutingKeyTaskDue.
	QueueDue = "tasks.reminders.due"

	// QueueDLQ is the durable dead-letter sink for messages whose
	// processing failed; nothing is ever requeued onto it (poison messages
	// land here exactly once, spec P8).
	QueueDLQ = "tasks.reminders.dlq"

	// RoutingKeyTaskDue is the routing key QueueDue binds on.
	RoutingKeyTaskDue = "task.due"

	// dlqExchange and dlqRoutingKey back QueueDue's dead-letter
	// configuration so a nack(requeue=false) is routed to QueueDLQ by
	// the broker itself rather than requiring a second publish.
	dlqExchange   = "tasks.events.dlx"
	dlqRoutingKey = "task.due.dead"
)
