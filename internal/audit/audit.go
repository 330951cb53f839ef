// Package audit feeds the append-only audit trail. Writers push entries onto
// a Redis queue; a background worker drains the queue into Postgres so the
// request path never waits on the log table.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/config"
)

// Entry is the queued form of one audit message.
type Entry struct {
	Message string `json:"message"`
}

// Recorder enqueues audit entries. Recording is best-effort: a Redis failure
// is logged and swallowed, it never fails the calling operation.
type Recorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(rdb *redis.Client, log zerolog.Logger) *Recorder {
	return &Recorder{
		rdb: rdb,
		log: log.With().Str("component", "audit").Logger(),
	}
}

// Record enqueues one formatted audit message.
func (r *Recorder) Record(ctx context.Context, format string, args ...interface{}) {
	raw, err := json.Marshal(Entry{Message: fmt.Sprintf(format, args...)})
	if err != nil {
		return
	}
	if err := r.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, raw).Err(); err != nil {
		r.log.Warn().Err(err).Msg("audit enqueue failed")
	}
}
