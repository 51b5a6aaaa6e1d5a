// File: cmd/batch.go
package cmd

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/internal/agent"
	"github.com/xkilldash9x/replay-cli/internal/config"
	"github.com/xkilldash9x/replay-cli/internal/observability"
)

// newBatchCmd creates and configures the `batch` command.
func newBatchCmd() *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch <events-file>",
		Short: "Replays a file of recorded events",
		Long: `Reads events from a JSONL file (one event per line) or a CSV file with
an event column, replays each in its own browser session, and prints a
summary. A single event failing never aborts the run unless
--stop-on-error is set.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("batch.concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("batch.rate_limit", cmd.Flags().Lookup("rate")); err != nil {
				return err
			}
			return viper.BindPFlag("batch.stop_on_error", cmd.Flags().Lookup("stop-on-error"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that the batch flags are bound, so
			// flag overrides land with the right precedence.
			loaded, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to apply batch flag overrides: %w", err)
			}
			cfg = loaded
			batchCfg := cfg.Batch()

			events, err := readEventsFile(args[0])
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return fmt.Errorf("no events found in %s", args[0])
			}

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Shutdown(ctx)

			summary, runErr := agent.RunBatch(ctx, batchCfg, rt.Agent, events, logger)

			if rt.Store != nil {
				if err := rt.Store.SaveResults(ctx, summary.RunID, summary.Results); err != nil {
					logger.Warn("Could not persist batch results", zap.Error(err))
				}
			}

			if path, _ := cmd.Flags().GetString("output"); path != "" {
				out, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("could not encode summary: %w", err)
				}
				if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
					return fmt.Errorf("could not write summary file: %w", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Batch complete. Run ID: %s. %d/%d succeeded, %d failed.\n",
				summary.RunID, summary.Succeeded, summary.Total, summary.Failed)
			return runErr
		},
	}

	batchCmd.Flags().IntP("concurrency", "j", 1, "number of concurrent browser sessions")
	batchCmd.Flags().Float64("rate", 2.0, "maximum events started per second")
	batchCmd.Flags().Bool("stop-on-error", false, "abort the run on the first error result")
	batchCmd.Flags().StringP("output", "o", "", "write the full summary JSON to this file")

	return batchCmd
}

// readEventsFile loads raw event payloads from a JSONL or CSV file. The
// format is chosen by extension; everything that is not .csv is treated as
// JSONL.
func readEventsFile(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open events file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readEventsCSV(f)
	}
	return readEventsJSONL(f)
}

// readEventsJSONL reads one event per line, skipping blanks and # comments.
func readEventsJSONL(r io.Reader) ([][]byte, error) {
	var events [][]byte

	scanner := bufio.NewScanner(r)
	// Recorded events with full property bags can be long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		events = append(events, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read events: %w", err)
	}
	return events, nil
}

// readEventsCSV reads events from a CSV export. The event JSON is taken
// from a column named event/event_json/json/payload when a header row is
// present, otherwise from the last column.
func readEventsCSV(r io.Reader) ([][]byte, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse events CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col, start := -1, 0
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "event", "event_json", "json", "payload":
			col, start = i, 1
		}
	}
	if col < 0 {
		// Headerless export; the event payload is conventionally last.
		col = len(records[0]) - 1
	}

	var events [][]byte
	for _, record := range records[start:] {
		if col >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			continue
		}
		events = append(events, []byte(cell))
	}
	return events, nil
}
