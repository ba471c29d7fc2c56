// Package worker runs the background due-date scanner described in
// spec §4.4.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taskflow/core/internal/broker"
	"github.com/taskflow/core/internal/repository"
	"github.com/taskflow/core/internal/storage"
)

const tasksTable = "tasks"

// publisher is the subset of *broker.Publisher the scanner depends on,
// letting tests substitute a fake without a live RabbitMQ connection.
type publisher interface {
	PublishTaskDue(ctx context.Context, evt broker.TaskDueV1) error
}

// DueScanWorker periodically claims overdue tasks and publishes a
// TaskDueV1 event per claimed task.
type DueScanWorker struct {
	pool      repository.DBTX
	tasks     *repository.TaskRepository
	publisher publisher
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewDueScanWorker builds a DueScanWorker, clamping intervalSeconds to
// [5, ...] (default 15 when 0) and batchSize to [1, 1000] (default 50
// when 0), logging whenever a clamp applies.
func NewDueScanWorker(pool repository.DBTX, pub publisher, intervalSeconds, batchSize int) *DueScanWorker {
	if intervalSeconds == 0 {
		intervalSeconds = 15
	}
	if intervalSeconds < 5 {
		log.Warn().Int("requested", intervalSeconds).Msg("due scan interval below minimum, clamping to 5s")
		intervalSeconds = 5
	}

	if batchSize == 0 {
		batchSize = 50
	}
	if batchSize < 1 {
		log.Warn().Int("requested", batchSize).Msg("due scan batch size below minimum, clamping to 1")
		batchSize = 1
	}
	if batchSize > 1000 {
		log.Warn().Int("requested", batchSize).Msg("due scan batch size above maximum, clamping to 1000")
		batchSize = 1000
	}

	return &DueScanWorker{
		pool:      pool,
		tasks:     repository.NewTaskRepository(pool),
		publisher: pub,
		interval:  time.Duration(intervalSeconds) * time.Second,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run loops until ctx is cancelled, scanning for due tasks every interval.
func (w *DueScanWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick performs a single scan-claim-publish pass. Any error is logged and
// swallowed so the loop survives transient DB/broker trouble.
func (w *DueScanWorker) tick(ctx context.Context) {
	exists, err := storage.TableExists(ctx, w.pool, tasksTable)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("due scan: checking tasks table existence failed")
		return
	}
	if !exists {
		log.Ctx(ctx).Debug().Msg("due scan: tasks table not present yet, skipping tick")
		return
	}

	claimedAt := w.now()
	n, err := w.tasks.ClaimDue(ctx, claimedAt, w.batchSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("due scan: claim failed")
		return
	}
	if n == 0 {
		return
	}

	rows, err := w.tasks.SelectClaimedAt(ctx, claimedAt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("due scan: selecting claimed rows failed")
		return
	}

	for _, row := range rows {
		evt := broker.TaskDueV1{
			TaskID:       row.ID,
			Title:        row.Title,
			DueDateUTC:   row.DueDate.UTC(),
			TimestampUTC: claimedAt,
		}
		if err := w.publisher.PublishTaskDue(ctx, evt); err != nil {
			// Logged inside PublishTaskDue; the claim still stands — the
			// scanner never reclaims or retries a task it already marked.
			continue
		}
	}

	log.Ctx(ctx).Info().Int("claimed", n).Msg("due scan: claimed and published tasks")
}
