// File: cmd/runtime.go
package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/internal/agent"
	"github.com/xkilldash9x/replay-cli/internal/browser"
	"github.com/xkilldash9x/replay-cli/internal/config"
	"github.com/xkilldash9x/replay-cli/internal/llmclient"
	"github.com/xkilldash9x/replay-cli/internal/pagemap"
	"github.com/xkilldash9x/replay-cli/internal/resolver"
	"github.com/xkilldash9x/replay-cli/internal/store"
)

// runtime holds the assembled components shared by the execute and batch
// commands: one browser process, one agent, and the optional result store.
type runtime struct {
	Manager *browser.Manager
	Agent   *agent.Agent
	Store   *store.Store
	RunID   string

	logger *zap.Logger
}

// newRuntime wires the execution pipeline from configuration. The store is
// only attached when database.url is configured; everything else is
// mandatory.
func newRuntime(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*runtime, error) {
	manager, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser manager: %w", err)
	}

	pages := pagemap.Load(cfg.Site().PageTypeFile, cfg.Site(), logger)

	hinter, err := llmclient.New(ctx, cfg.LLM(), logger)
	if err != nil {
		manager.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize selector hinter: %w", err)
	}
	var hints resolver.HintProvider
	if hinter != nil {
		hints = hinter
	}

	rt := &runtime{
		Manager: manager,
		Agent: agent.New(cfg, logger, agent.ProviderFromManager(manager), pages,
			resolver.New(cfg, logger, hints)),
		RunID:  uuid.NewString(),
		logger: logger,
	}

	if url := cfg.Database().URL; url != "" {
		st, err := store.Connect(ctx, url, logger)
		if err != nil {
			manager.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to result store: %w", err)
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			manager.Shutdown(ctx)
			return nil, err
		}
		rt.Store = st
	}

	return rt, nil
}

// Shutdown releases the browser and the store. Safe on a partially built
// runtime.
func (r *runtime) Shutdown(ctx context.Context) {
	if r.Manager != nil {
		r.Manager.Shutdown(ctx)
	}
	if r.Store != nil {
		r.Store.Close()
	}
}
