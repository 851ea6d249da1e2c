package api

import (
	"context"
	"log/slog"
	"time"

	"wordsmith/internal/autocomplete"
	"wordsmith/internal/watcher"
)

// recorder queues words from POST /words and records them once the client
// pauses, keeping per-word persistence out of the request path.
type recorder struct {
	engine  *autocomplete.Engine
	batch   *watcher.Batcher[string]
	metrics *Metrics
	logger  *slog.Logger
}

func newRecorder(engine *autocomplete.Engine, delay time.Duration, metrics *Metrics, logger *slog.Logger) *recorder {
	r := &recorder{engine: engine, metrics: metrics, logger: logger}
	r.batch = watcher.NewBatcher(delay, r.flush)
	return r
}

func (r *recorder) add(word string) {
	r.batch.Add(word)
}

func (r *recorder) pending() int {
	return r.batch.Pending()
}

// stop records whatever is still queued
func (r *recorder) stop() {
	r.batch.Stop()
}

func (r *recorder) flush(words []string) {
	ctx := context.Background()
	failed := 0
	for _, word := range words {
		c, err := r.engine.Complete(ctx, word)
		r.metrics.observeCompletion(c, err)
		if err != nil {
			failed++
		}
	}
	r.logger.Debug("Recorded queued words", "count", len(words), "failed", failed)
}
