package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/audit"
	"github.com/tildelab/tildes-backend/internal/config"
	"github.com/tildelab/tildes-backend/internal/repository"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the audit queue from Redis into the logs table.
type AuditWorker struct {
	logRepo *repository.LogRepository
	rdb     *redis.Client
	log     zerolog.Logger
}

func NewAuditWorker(logRepo *repository.LogRepository, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		logRepo: logRepo,
		rdb:     rdb,
		log:     log.With().Str("component", "audit_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]string, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.PersistAuditQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e audit.Entry
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, e.Message)
		}
	}
}

// flushSafe persists a batch, requeueing messages that could not be written.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []string) {
	if len(batch) == 0 {
		return
	}

	if err := w.logRepo.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("batch audit insert failed, requeueing")
		for _, m := range batch {
			raw, _ := json.Marshal(audit.Entry{Message: m})
			w.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, raw)
		}
	}
}
