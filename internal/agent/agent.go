// File: internal/agent/agent.go

// Package agent owns the event execution pipeline: validate, open a browser
// session, land on the right page, dispatch the classified action, and fold
// everything into a single ExecutionResult. ExecuteEvent never returns a Go
// error; the result descriptor is the only contract.
package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/browser"
	"github.com/xkilldash9x/replay-cli/internal/config"
	"github.com/xkilldash9x/replay-cli/internal/event"
	"github.com/xkilldash9x/replay-cli/internal/pagemap"
	"github.com/xkilldash9x/replay-cli/internal/resolver"
)

const teardownTimeout = 20 * time.Second

// Session is a live page plus its teardown. Satisfied by *browser.Session;
// tests substitute scripted fakes.
type Session interface {
	schemas.Page
	Close(ctx context.Context)
}

// SessionProvider hands out isolated browser sessions.
type SessionProvider interface {
	NewSession(ctx context.Context) (Session, error)
}

// managerProvider adapts the concrete browser manager to SessionProvider.
type managerProvider struct {
	m *browser.Manager
}

func (p managerProvider) NewSession(ctx context.Context) (Session, error) {
	return p.m.NewSession(ctx)
}

// ProviderFromManager wraps a browser manager for use as the agent's
// session source.
func ProviderFromManager(m *browser.Manager) SessionProvider {
	return managerProvider{m: m}
}

// Agent replays one event at a time against the configured site.
type Agent struct {
	cfg      config.Interface
	logger   *zap.Logger
	sessions SessionProvider
	pages    *pagemap.Table
	resolver *resolver.Engine
}

// New assembles an agent from its collaborators.
func New(cfg config.Interface, logger *zap.Logger, sessions SessionProvider, pages *pagemap.Table, res *resolver.Engine) *Agent {
	return &Agent{
		cfg:      cfg,
		logger:   logger.Named("Agent"),
		sessions: sessions,
		pages:    pages,
		resolver: res,
	}
}

// ExecuteEvent replays one raw analytics event. The returned result is
// status=error only for validation failures and session faults; every
// heuristic miss inside the browser is status=success with a descriptive
// result string.
func (a *Agent) ExecuteEvent(ctx context.Context, raw []byte) schemas.ExecutionResult {
	started := time.Now()

	root, err := event.DecodeObject(raw)
	if err != nil {
		return schemas.NewErrorResult("Invalid JSON", err.Error())
	}

	// page_type is the one hard requirement; without it there is nowhere
	// to replay the event against.
	if event.ExtractPageType(root) == "" {
		return schemas.NewErrorResult("Invalid JSON", "page_type is required but not found in JSON")
	}

	intent := event.BuildIntent(root)
	log := a.logger.With(zap.String("event_type", intent.EventType.Label()))
	log.Info("Executing event.",
		zap.String("category", intent.Category),
		zap.String("action", intent.Action),
		zap.String("label", intent.Label),
		zap.String("page_type", intent.PageType))

	session, err := a.sessions.NewSession(ctx)
	if err != nil {
		return schemas.NewErrorResult(intent.EventType.Label(), err.Error())
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		session.Close(closeCtx)
	}()

	if err := a.loadSite(ctx, session); err != nil {
		return schemas.NewErrorResult(intent.EventType.Label(), err.Error())
	}

	if intent.PageType != "" {
		navResult := a.navigateToPageType(ctx, session, intent.PageType)
		log.Info("Page navigation.", zap.String("result", navResult))
	}

	result := a.performAction(ctx, session, intent)
	log.Info("Event executed.", zap.String("result", result))

	return schemas.NewSuccessResult(intent.EventType.Label(), intent.Properties(), started, result)
}

// loadSite performs the two-tier initial load: a strict network-idle wait,
// then a looser DOM-content retry when the page never settles. The site's
// ad and analytics tags keep connections open for a long time; the retry is
// the normal path, not the exception.
func (a *Agent) loadSite(ctx context.Context, page schemas.Page) error {
	base := a.cfg.Site().BaseURL()
	network := a.cfg.Network()

	a.logger.Debug("Loading site.", zap.String("url", base))
	if err := page.Navigate(ctx, base, schemas.WaitNetworkIdle, network.NavigationTimeout); err == nil {
		return nil
	}

	a.logger.Debug("Network-idle load timed out, retrying with DOM content wait.")
	return page.Navigate(ctx, base, schemas.WaitDOMContent, network.FallbackTimeout)
}
