// File: internal/agent/batch.go
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/config"
)

// Executor runs one raw event to completion. Satisfied by *Agent.
type Executor interface {
	ExecuteEvent(ctx context.Context, raw []byte) schemas.ExecutionResult
}

// BatchSummary aggregates a batch run. Results keep the input file's order
// regardless of completion order.
type BatchSummary struct {
	RunID           string                    `json:"run_id"`
	Total           int                       `json:"total"`
	Succeeded       int                       `json:"succeeded"`
	Failed          int                       `json:"failed"`
	DurationSeconds float64                   `json:"duration_seconds"`
	Results         []schemas.ExecutionResult `json:"results"`
}

// RunBatch replays a file's worth of events with bounded concurrency and
// rate limiting. A single event's error result never aborts the batch
// unless StopOnError is set; the summary always covers every event that
// ran.
func RunBatch(ctx context.Context, cfg config.BatchConfig, exec Executor, events [][]byte, logger *zap.Logger) (*BatchSummary, error) {
	summary := &BatchSummary{
		RunID:   uuid.NewString(),
		Total:   len(events),
		Results: make([]schemas.ExecutionResult, len(events)),
	}
	log := logger.Named("Batch").With(zap.String("run_id", summary.RunID))
	log.Info("Starting batch run.",
		zap.Int("events", len(events)),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Float64("rate_limit", cfg.RateLimit))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, raw := range events {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			result := exec.ExecuteEvent(gctx, raw)
			// Each goroutine owns a distinct slot; no further sync needed.
			summary.Results[i] = result
			log.Info("Event finished.",
				zap.Int("index", i),
				zap.String("event", result.Event),
				zap.String("status", result.Status))

			if cfg.StopOnError && result.Status == schemas.StatusError {
				return fmt.Errorf("event %d (%s) failed: %s", i, result.Event, result.Error)
			}

			if cfg.EventDelay > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(cfg.EventDelay):
				}
			}
			return nil
		})
	}

	runErr := g.Wait()

	for _, res := range summary.Results {
		switch res.Status {
		case schemas.StatusSuccess:
			summary.Succeeded++
		case schemas.StatusError:
			summary.Failed++
		}
	}
	summary.DurationSeconds = time.Since(started).Seconds()

	log.Info("Batch run finished.",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Float64("duration_seconds", summary.DurationSeconds))

	if runErr != nil {
		return summary, runErr
	}
	return summary, nil
}
