// api/schemas/result.go
package schemas

import "time"

// Execution status values. Status reports whether the automation harness
// itself operated correctly; a heuristic miss (element not found, unhandled
// event type) is still StatusSuccess with a failure-flavored Result string.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TimestampLayout is the layout used for CompletedAt, matching the format
// the downstream analytics consumers expect.
const TimestampLayout = "2006-01-02 15:04:05"

// ExecutionResult is the single, immutable outcome descriptor returned for
// every event execution. ExecuteEvent never returns an error; faults are
// folded into Status/Error here.
type ExecutionResult struct {
	Status          string                 `json:"status"`
	Event           string                 `json:"event"`
	Properties      map[string]interface{} `json:"properties,omitempty"`
	CompletedAt     string                 `json:"completed_at"`
	Hour            int                    `json:"hour"`
	DurationSeconds float64                `json:"duration_seconds,omitempty"`
	Result          string                 `json:"result,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// NewSuccessResult stamps a success descriptor with completion time fields.
func NewSuccessResult(event string, props map[string]interface{}, started time.Time, result string) ExecutionResult {
	now := time.Now()
	return ExecutionResult{
		Status:          StatusSuccess,
		Event:           event,
		Properties:      props,
		CompletedAt:     now.Format(TimestampLayout),
		Hour:            now.Hour(),
		DurationSeconds: now.Sub(started).Seconds(),
		Result:          result,
	}
}

// NewErrorResult stamps an error descriptor. Duration is omitted when the
// failure happened before any browser work started.
func NewErrorResult(event string, errMsg string) ExecutionResult {
	now := time.Now()
	return ExecutionResult{
		Status:      StatusError,
		Event:       event,
		Error:       errMsg,
		CompletedAt: now.Format(TimestampLayout),
		Hour:        now.Hour(),
	}
}
