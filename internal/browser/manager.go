// File: internal/browser/manager.go

// Package browser drives a real Chrome instance over CDP and exposes the
// page primitives the resolution engine interacts through. Each replayed
// event gets its own isolated browser context so cart state and cookies
// never bleed between runs.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/internal/config"
)

const shutdownTimeout = 15 * time.Second

// Manager owns the Chrome process and hands out isolated sessions. The
// allocator and the browser controller context live for the manager's
// lifetime; sessions come and go underneath them.
type Manager struct {
	cfg    config.Interface
	logger *zap.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// Serializes CreateBrowserContext/CreateTarget pairs. Interleaving them
	// across goroutines can associate a target with the wrong context.
	contextCreationLock sync.Mutex

	mu     sync.Mutex
	closed bool
}

// NewManager launches the browser process. Startup is eager so a broken
// Chrome install fails here rather than mid-replay.
func NewManager(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Manager, error) {
	log := logger.Named("Browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOptions(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser process: %w", err)
	}

	log.Info("Browser process started.", zap.Bool("headless", cfg.Browser().Headless))
	return &Manager{
		cfg:           cfg,
		logger:        log,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewSession creates a fresh page backed by an isolated browser context.
// The caller owns the session and must Close it.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("browser manager is shut down")
	}
	m.mu.Unlock()

	s := newSession(m.browserCtx, m.cfg, m.logger, &m.contextCreationLock)
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Shutdown tears down the browser process. Safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Debug("Shutting down browser manager.")
	browserDone := m.browserCtx.Done()
	m.browserCancel()

	select {
	case <-browserDone:
	case <-ctx.Done():
		m.logger.Warn("Context cancelled while waiting for browser shutdown.", zap.Error(ctx.Err()))
	case <-time.After(shutdownTimeout):
		m.logger.Warn("Timeout waiting for browser process to exit.")
	}
	m.allocCancel()
}

// execOptions translates the browser config into chromedp allocator options.
func execOptions(cfg config.Interface) []chromedp.ExecAllocatorOption {
	browserCfg := cfg.Browser()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Required on hardened systems where the sandbox cannot start.
		chromedp.NoSandbox,
		// Recommended for stability in containers/headless envs.
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if browserCfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	if w, h := browserCfg.Viewport["width"], browserCfg.Viewport["height"]; w > 0 && h > 0 {
		opts = append(opts, chromedp.WindowSize(w, h))
	}

	if browserCfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(browserCfg.UserAgent))
	}

	// Additional flags from the config file's 'args' slice.
	for _, arg := range browserCfg.Args {
		// Boolean flags (e.g. --no-zygote).
		if !strings.Contains(arg, "=") {
			opts = append(opts, chromedp.Flag(normalizeFlag(arg), true))
			continue
		}

		// key=value flags.
		parts := strings.SplitN(arg, "=", 2)
		opts = append(opts, chromedp.Flag(normalizeFlag(parts[0]), parts[1]))
	}
	return opts
}

// normalizeFlag strips the leading dashes chromedp.Flag does not expect.
func normalizeFlag(name string) string {
	return strings.TrimLeft(name, "-")
}
