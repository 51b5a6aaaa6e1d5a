// File: cmd/execute.go
package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newExecuteCmd creates and configures the `execute` command.
func newExecuteCmd() *cobra.Command {
	executeCmd := &cobra.Command{
		Use:   "execute [event-file]",
		Short: "Replays a single recorded event against the configured site",
		Long: `Reads one analytics event as JSON (from a file, --data, or stdin),
replays it in a fresh browser session, and prints the execution result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			raw, err := readEventPayload(cmd, args)
			if err != nil {
				return err
			}

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Shutdown(ctx)

			result := rt.Agent.ExecuteEvent(ctx, raw)

			if rt.Store != nil {
				if err := rt.Store.SaveResult(ctx, rt.RunID, result); err != nil {
					logger.Warn("Could not persist result", zap.Error(err))
				}
			}

			if err := writeResult(cmd, result); err != nil {
				return err
			}
			if result.Status == schemas.StatusError {
				return fmt.Errorf("event execution failed: %s", result.Error)
			}
			return nil
		},
	}

	executeCmd.Flags().StringP("file", "f", "", "path to the event JSON file")
	executeCmd.Flags().String("data", "", "base64-encoded event JSON (shareable encoded events)")
	executeCmd.Flags().StringP("output", "o", "", "write the result JSON to this file instead of stdout")

	return executeCmd
}

// readEventPayload resolves the event bytes from --data, a file argument,
// or stdin, in that order.
func readEventPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if data, _ := cmd.Flags().GetString("data"); data != "" {
		raw, err := decodeEventData(data)
		if err != nil {
			return nil, fmt.Errorf("could not decode --data payload: %w", err)
		}
		return raw, nil
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read event file: %w", err)
		}
		return raw, nil
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("could not read event from stdin: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("no event provided: pass a file, --data, or pipe JSON on stdin")
	}
	return raw, nil
}

// decodeEventData accepts both standard and URL-safe base64, padded or not.
// Encoded events come from URLs as often as from shell pipelines.
func decodeEventData(data string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(data)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func writeResult(cmd *cobra.Command, result schemas.ExecutionResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode result: %w", err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("could not write result file: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
