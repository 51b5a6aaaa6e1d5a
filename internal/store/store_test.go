// File: internal/store/store_test.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

// ArgumentMatcherFunc is a helper to create inline mock matchers.
type ArgumentMatcherFunc func(interface{}) bool

func (f ArgumentMatcherFunc) Match(v interface{}) bool {
	return f(v)
}

// anyUUID accepts any value that parses as a UUID (the generated row IDs).
var anyUUID = ArgumentMatcherFunc(func(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
})

func sampleResult() schemas.ExecutionResult {
	return schemas.ExecutionResult{
		Status:          schemas.StatusSuccess,
		Event:           "Navigation Clicked",
		Properties:      map[string]interface{}{"page_type": "cart"},
		CompletedAt:     "2025-08-25 14:03:05",
		Hour:            14,
		DurationSeconds: 1.5,
		Result:          "Successfully clicked mini-cart",
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr, "Error from ping should be propagated")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectPing().WillReturnError(nil)
	store, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)

	mockPool.ExpectExec(flexibleSQLMatcher(createTableSQL)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestSaveResult(t *testing.T) {
	ctx := context.Background()

	t.Run("should insert a result with its properties", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		res := sampleResult()
		completedAt := time.Date(2025, 8, 25, 14, 3, 5, 0, time.UTC)

		mockPool.ExpectExec(flexibleSQLMatcher(insertResultSQL)).
			WithArgs(
				anyUUID, "run-1", res.Event, res.Status,
				res.Result, res.Error, json.RawMessage(`{"page_type":"cart"}`),
				res.DurationSeconds, completedAt, res.Hour,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.SaveResult(ctx, "run-1", res))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should store empty properties as an empty JSON object", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		res := sampleResult()
		res.Properties = nil
		completedAt := time.Date(2025, 8, 25, 14, 3, 5, 0, time.UTC)

		mockPool.ExpectExec(flexibleSQLMatcher(insertResultSQL)).
			WithArgs(
				anyUUID, "run-1", res.Event, res.Status,
				res.Result, res.Error, json.RawMessage("{}"),
				res.DurationSeconds, completedAt, res.Hour,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.SaveResult(ctx, "run-1", res))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should propagate insert failures", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		insertErr := errors.New("connection reset")
		mockPool.ExpectExec(flexibleSQLMatcher(insertResultSQL)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(insertErr)

		err = store.SaveResult(ctx, "run-1", sampleResult())
		require.Error(t, err)
		assert.ErrorIs(t, err, insertErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestSaveResults(t *testing.T) {
	ctx := context.Background()

	t.Run("should bulk-insert with COPY", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		results := []schemas.ExecutionResult{sampleResult(), sampleResult()}
		mockPool.ExpectCopyFrom(pgx.Identifier{"replay_results"}, resultColumns).
			WillReturnResult(2)

		require.NoError(t, store.SaveResults(ctx, "run-batch", results))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should fail on a copy count mismatch", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		results := []schemas.ExecutionResult{sampleResult(), sampleResult()}
		mockPool.ExpectCopyFrom(pgx.Identifier{"replay_results"}, resultColumns).
			WillReturnResult(1)

		err = store.SaveResults(ctx, "run-batch", results)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mismatch in copied results count")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should be a no-op for an empty batch", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, store.SaveResults(ctx, "run-empty", nil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestResultsByRun(t *testing.T) {
	ctx := context.Background()

	t.Run("should retrieve results successfully", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		sqlGetResults := `
        SELECT event, status, result, error, properties, duration_seconds, completed_at, hour
        FROM replay_results
        WHERE run_id = $1
        ORDER BY completed_at ASC;
        `
		runID := uuid.NewString()
		completedAt := time.Date(2025, 8, 25, 14, 3, 5, 0, time.UTC)
		propertiesJSON := `{"page_type": "cart"}`

		columns := []string{"event", "status", "result", "error", "properties", "duration_seconds", "completed_at", "hour"}
		rows := pgxmock.NewRows(columns).
			AddRow("Navigation Clicked", "success", "Successfully clicked mini-cart", "", []byte(propertiesJSON), 1.5, completedAt, 14)

		mockPool.ExpectQuery(flexibleSQLMatcher(sqlGetResults)).
			WithArgs(runID).
			WillReturnRows(rows)

		results, err := store.ResultsByRun(ctx, runID)
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.Equal(t, "Navigation Clicked", results[0].Event)
		assert.Equal(t, schemas.StatusSuccess, results[0].Status)
		assert.Equal(t, "2025-08-25 14:03:05", results[0].CompletedAt)
		assert.Equal(t, map[string]interface{}{"page_type": "cart"}, results[0].Properties)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should propagate query failures", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing().WillReturnError(nil)
		store, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		queryErr := errors.New("relation does not exist")
		mockPool.ExpectQuery("SELECT").WithArgs(pgxmock.AnyArg()).WillReturnError(queryErr)

		_, err = store.ResultsByRun(ctx, "run-x")
		require.Error(t, err)
		assert.ErrorIs(t, err, queryErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
