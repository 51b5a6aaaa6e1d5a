// File: internal/store/store.go

// Package store persists execution results to PostgreSQL. Persistence is
// optional: the CLI works fully without a database, and the batch runner
// only wires a store in when database.url is configured.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

var resultColumns = []string{
	"id", "run_id", "event", "status", "result", "error",
	"properties", "duration_seconds", "completed_at", "hour",
}

const createTableSQL = `
    CREATE TABLE IF NOT EXISTS replay_results (
        id               UUID PRIMARY KEY,
        run_id           TEXT NOT NULL,
        event            TEXT NOT NULL,
        status           TEXT NOT NULL,
        result           TEXT,
        error            TEXT,
        properties       JSONB NOT NULL DEFAULT '{}',
        duration_seconds DOUBLE PRECISION,
        completed_at     TIMESTAMPTZ NOT NULL,
        hour             INT NOT NULL
    );
`

const insertResultSQL = `
    INSERT INTO replay_results (id, run_id, event, status, result, error, properties, duration_seconds, completed_at, hour)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// Store is the PostgreSQL-backed result repository.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// Connect opens a pgx pool against the URL and verifies the connection.
func Connect(ctx context.Context, url string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return New(ctx, pool, logger)
}

// New creates a store around an existing pool and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the results table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

// SaveResult inserts a single execution result under the given run ID.
func (s *Store) SaveResult(ctx context.Context, runID string, res schemas.ExecutionResult) error {
	row, err := resultRow(runID, res)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, insertResultSQL, row...); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	s.log.Debug("Result persisted", zap.String("run_id", runID), zap.String("event", res.Event))
	return nil
}

// SaveResults bulk-inserts a batch run's results with COPY.
func (s *Store) SaveResults(ctx context.Context, runID string, results []schemas.ExecutionResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(results))
	for i, res := range results {
		row, err := resultRow(runID, res)
		if err != nil {
			return err
		}
		rows[i] = row
	}

	copyCount, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"replay_results"},
		resultColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy results: %w", err)
	}
	if int(copyCount) != len(results) {
		return fmt.Errorf("mismatch in copied results count: expected %d, got %d", len(results), copyCount)
	}

	s.log.Info("Batch results persisted", zap.String("run_id", runID), zap.Int("count", len(results)))
	return nil
}

// ResultsByRun returns a run's results ordered by completion time.
func (s *Store) ResultsByRun(ctx context.Context, runID string) ([]schemas.ExecutionResult, error) {
	query := `
        SELECT event, status, result, error, properties, duration_seconds, completed_at, hour
        FROM replay_results
        WHERE run_id = $1
        ORDER BY completed_at ASC;
    `
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []schemas.ExecutionResult
	for rows.Next() {
		var (
			res         schemas.ExecutionResult
			properties  []byte
			completedAt time.Time
		)
		err := rows.Scan(
			&res.Event, &res.Status, &res.Result, &res.Error,
			&properties, &res.DurationSeconds, &completedAt, &res.Hour,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		if len(properties) > 0 && string(properties) != "null" {
			if err := json.Unmarshal(properties, &res.Properties); err != nil {
				return nil, fmt.Errorf("failed to decode result properties: %w", err)
			}
		}
		res.CompletedAt = completedAt.UTC().Format(schemas.TimestampLayout)
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return results, nil
}

// resultRow flattens a result into insert order. Timestamps are stored in
// UTC to prevent ambiguity.
func resultRow(runID string, res schemas.ExecutionResult) ([]interface{}, error) {
	properties := json.RawMessage("{}")
	if len(res.Properties) > 0 {
		encoded, err := json.Marshal(res.Properties)
		if err != nil {
			return nil, fmt.Errorf("failed to encode result properties: %w", err)
		}
		properties = encoded
	}

	return []interface{}{
		uuid.NewString(), runID, res.Event, res.Status,
		res.Result, res.Error, properties,
		res.DurationSeconds, parseCompletedAt(res.CompletedAt), res.Hour,
	}, nil
}

// parseCompletedAt recovers the completion instant from the descriptor's
// wire format. A malformed value falls back to now rather than failing the
// insert.
func parseCompletedAt(s string) time.Time {
	t, err := time.ParseInLocation(schemas.TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
