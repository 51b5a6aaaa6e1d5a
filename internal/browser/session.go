// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/config"
)

const (
	closeTimeout = 15 * time.Second
	// Poll interval for visibility and readyState checks.
	pollInterval = 100 * time.Millisecond
	// How long the network has to stay quiet before a page counts as idle.
	networkIdleQuiet = 500 * time.Millisecond
)

// Session is one isolated Chrome tab. It implements schemas.Page; the
// resolver and dispatcher never see anything more concrete than that.
type Session struct {
	id     string
	cfg    config.Interface
	logger *zap.Logger

	parentBrowserCtx    context.Context
	contextCreationLock *sync.Mutex

	sessionCtx       context.Context
	sessionCancel    context.CancelFunc
	browserContextID cdp.BrowserContextID
	monitor          *networkMonitor

	mu            sync.Mutex
	isInitialized bool
	isClosed      bool
}

var _ schemas.Page = (*Session)(nil)

func newSession(parentBrowserCtx context.Context, cfg config.Interface, logger *zap.Logger, lock *sync.Mutex) *Session {
	id := uuid.New().String()
	return &Session{
		id:                  id,
		cfg:                 cfg,
		logger:              logger.With(zap.String("session_id", id)),
		parentBrowserCtx:    parentBrowserCtx,
		contextCreationLock: lock,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// initialize creates the isolated browser context and an about:blank target
// inside it, then attaches a chromedp context to that target.
func (s *Session) initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.isInitialized {
		s.mu.Unlock()
		return fmt.Errorf("session already initialized")
	}
	s.mu.Unlock()

	s.contextCreationLock.Lock()
	defer s.contextCreationLock.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before creating browser context: %w", err)
	}

	browserContextID, err := target.CreateBrowserContext().Do(s.parentBrowserCtx)
	if err != nil {
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	targetID, err := target.CreateTarget("about:blank").
		WithBrowserContextID(browserContextID).
		Do(s.parentBrowserCtx)
	if err != nil {
		s.bestEffortCleanupBrowserContext(browserContextID)
		return fmt.Errorf("failed to create target: %w", err)
	}

	sessionCtx, cancelSession := chromedp.NewContext(s.parentBrowserCtx, chromedp.WithTargetID(targetID))

	s.mu.Lock()
	s.sessionCtx = sessionCtx
	s.sessionCancel = cancelSession
	s.browserContextID = browserContextID
	s.mu.Unlock()

	success := false
	defer func() {
		if !success {
			s.Close(context.Background())
		}
	}()

	s.monitor = newNetworkMonitor()
	s.monitor.attach(sessionCtx)

	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.ActionFunc(func(c context.Context) error {
			if s.cfg.Browser().DisableCache {
				if err := network.SetCacheDisabled(true).Do(c); err != nil {
					s.logger.Warn("Failed to disable browser cache", zap.Error(err))
				}
			}
			return nil
		}),
	}
	if err := chromedp.Run(sessionCtx, tasks); err != nil {
		return fmt.Errorf("failed to setup session: %w", err)
	}

	s.mu.Lock()
	s.isInitialized = true
	s.mu.Unlock()

	success = true
	s.logger.Debug("Browser session initialized.")
	return nil
}

func (s *Session) bestEffortCleanupBrowserContext(id cdp.BrowserContextID) {
	if s.parentBrowserCtx.Err() != nil {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(s.parentBrowserCtx, 5*time.Second)
	defer cancel()
	if err := target.DisposeBrowserContext(id).Do(cleanupCtx); err != nil {
		s.logger.Debug("Failed best-effort cleanup of orphaned browser context.",
			zap.String("browserContextID", string(id)), zap.Error(err))
	}
}

// getContext returns the live session context, or an already-cancelled one
// when the session is gone so callers fail fast instead of hanging.
func (s *Session) getContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isInitialized || s.isClosed || s.sessionCtx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.sessionCtx
}

// runActions executes chromedp actions against the session target, bounded
// by both the caller's context and the session's lifetime.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	sessionCtx := s.getContext()
	if err := sessionCtx.Err(); err != nil {
		return fmt.Errorf("session is closed: %w", err)
	}
	combined, cancel := combineContext(sessionCtx, ctx)
	defer cancel()
	return chromedp.Run(combined, actions...)
}

// Navigate loads a URL under the given wait policy. WaitNetworkIdle waits
// for the load event plus a network quiet window; WaitDOMContent settles
// for DOMContentLoaded. Either way the whole load is bounded by timeout.
func (s *Session) Navigate(ctx context.Context, url string, wait schemas.WaitPolicy, timeout time.Duration) error {
	s.logger.Debug("Navigating.", zap.String("url", url), zap.Int("wait_policy", int(wait)))

	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if s.monitor != nil {
		s.monitor.reset()
	}
	if err := s.runActions(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	switch wait {
	case schemas.WaitNetworkIdle:
		if err := s.waitReadyState(navCtx, "complete"); err != nil {
			return fmt.Errorf("load wait for %s: %w", url, err)
		}
		if err := s.monitor.WaitIdle(navCtx, networkIdleQuiet); err != nil {
			return fmt.Errorf("network idle wait for %s: %w", url, err)
		}
	case schemas.WaitDOMContent:
		if err := s.waitReadyState(navCtx, "interactive"); err != nil {
			return fmt.Errorf("DOM content wait for %s: %w", url, err)
		}
	}

	if settle := s.cfg.Network().SettleWait; settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// waitReadyState polls document.readyState until it reaches at least the
// given phase. "interactive" accepts "complete" as well.
func (s *Session) waitReadyState(ctx context.Context, want string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var state string
		if err := s.runActions(ctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Evaluation can race a cross-document navigation; retry.
			s.logger.Debug("readyState probe failed, retrying.", zap.Error(err))
		}
		if state == "complete" || (want == "interactive" && state == "interactive") {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitLoaded waits for the document to reach DOMContentLoaded.
func (s *Session) WaitLoaded(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.waitReadyState(waitCtx, "interactive")
}

// CurrentURL returns the page's current location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	if err := s.runActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return loc, nil
}

// Count returns how many elements match the CSS selector.
func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	var count int
	expr := fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(selector))
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, fmt.Errorf("count of %q failed: %w", selector, err)
	}
	return count, nil
}

// Visible reports whether the index-th match of the selector is visible,
// polling up to timeout. Timing out is a negative answer, not an error.
func (s *Session) Visible(ctx context.Context, selector string, index int, timeout time.Duration) (bool, error) {
	expr := fmt.Sprintf(visibleScript, jsString(selector), index)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var visible bool
		if err := s.runActions(waitCtx, chromedp.Evaluate(expr, &visible)); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if waitCtx.Err() != nil {
				return false, nil
			}
			return false, fmt.Errorf("visibility check of %q failed: %w", selector, err)
		}
		if visible {
			return true, nil
		}
		select {
		case <-waitCtx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
}

// Click clicks the index-th match of the selector, waiting up to timeout
// for it to become visible first.
func (s *Session) Click(ctx context.Context, selector string, index int, timeout time.Duration) error {
	visible, err := s.Visible(ctx, selector, index, timeout)
	if err != nil {
		return err
	}
	if !visible {
		return fmt.Errorf("element %q[%d] not visible within %s", selector, index, timeout)
	}

	var clicked bool
	expr := fmt.Sprintf(clickScript, jsString(selector), index)
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("click on %q[%d] failed: %w", selector, index, err)
	}
	if !clicked {
		return fmt.Errorf("element %q[%d] disappeared before click", selector, index)
	}
	return nil
}

// Hover moves the pointer over the index-th match of the selector.
func (s *Session) Hover(ctx context.Context, selector string, index int, timeout time.Duration) error {
	visible, err := s.Visible(ctx, selector, index, timeout)
	if err != nil {
		return err
	}
	if !visible {
		return fmt.Errorf("element %q[%d] not visible within %s", selector, index, timeout)
	}

	var hovered bool
	expr := fmt.Sprintf(hoverScript, jsString(selector), index)
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &hovered)); err != nil {
		return fmt.Errorf("hover on %q[%d] failed: %w", selector, index, err)
	}
	if !hovered {
		return fmt.Errorf("element %q[%d] disappeared before hover", selector, index)
	}
	return nil
}

// Text returns the trimmed text content of the index-th match.
func (s *Session) Text(ctx context.Context, selector string, index int) (string, error) {
	var text string
	expr := fmt.Sprintf(textScript, jsString(selector), index)
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &text)); err != nil {
		return "", fmt.Errorf("text of %q[%d] failed: %w", selector, index, err)
	}
	return strings.TrimSpace(text), nil
}

// CountText returns how many visible elements contain the given text.
func (s *Session) CountText(ctx context.Context, text string) (int, error) {
	var count int
	expr := fmt.Sprintf(countTextScript, jsString(text))
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, fmt.Errorf("text count of %q failed: %w", text, err)
	}
	return count, nil
}

// ClickText clicks the index-th visible element containing the text.
func (s *Session) ClickText(ctx context.Context, text string, index int, timeout time.Duration) error {
	clickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var clicked bool
	expr := fmt.Sprintf(clickTextScript, jsString(text), index)
	if err := s.runActions(clickCtx, chromedp.Evaluate(expr, &clicked)); err != nil {
		return fmt.Errorf("text click on %q[%d] failed: %w", text, index, err)
	}
	if !clicked {
		return fmt.Errorf("no visible element containing %q at index %d", text, index)
	}
	return nil
}

// HoverText moves the pointer over the index-th visible element containing
// the text.
func (s *Session) HoverText(ctx context.Context, text string, index int, timeout time.Duration) error {
	hoverCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var hovered bool
	expr := fmt.Sprintf(hoverTextScript, jsString(text), index)
	if err := s.runActions(hoverCtx, chromedp.Evaluate(expr, &hovered)); err != nil {
		return fmt.Errorf("text hover on %q[%d] failed: %w", text, index, err)
	}
	if !hovered {
		return fmt.Errorf("no visible element containing %q at index %d", text, index)
	}
	return nil
}

// TextContentAt returns the text of the index-th element containing text.
func (s *Session) TextContentAt(ctx context.Context, text string, index int) (string, error) {
	var content string
	expr := fmt.Sprintf(textContentAtScript, jsString(text), index)
	if err := s.runActions(ctx, chromedp.Evaluate(expr, &content)); err != nil {
		return "", fmt.Errorf("text content of %q[%d] failed: %w", text, index, err)
	}
	return strings.TrimSpace(content), nil
}

// Evaluate runs a JavaScript expression and unmarshals the result into out.
func (s *Session) Evaluate(ctx context.Context, expression string, out interface{}) error {
	if err := s.runActions(ctx, chromedp.Evaluate(expression, out)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// PressKey dispatches a keyboard key to the focused element.
func (s *Session) PressKey(ctx context.Context, key string) error {
	var keys string
	switch strings.ToLower(key) {
	case "tab":
		keys = "\t"
	case "enter":
		keys = "\r"
	default:
		keys = key
	}
	if err := s.runActions(ctx, chromedp.KeyEvent(keys)); err != nil {
		return fmt.Errorf("key press %q failed: %w", key, err)
	}
	return nil
}

// Close tears down the session's target and browser context. Idempotent.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return
	}
	s.isClosed = true
	sessionCtx := s.sessionCtx
	sessionCancel := s.sessionCancel
	browserCtxID := s.browserContextID
	s.mu.Unlock()

	if sessionCtx == nil {
		return
	}
	s.logger.Debug("Closing browser session.")

	if sessionCancel != nil {
		sessionCancel()
	}

	if browserCtxID != "" && s.parentBrowserCtx.Err() == nil {
		timeoutCtx, cancelTimeout := context.WithTimeout(s.parentBrowserCtx, 10*time.Second)
		defer cancelTimeout()
		if err := chromedp.Run(timeoutCtx, target.DisposeBrowserContext(browserCtxID)); err != nil {
			if s.parentBrowserCtx.Err() == nil {
				s.logger.Warn("Failed to dispose of browser context. It may be orphaned.",
					zap.String("browserContextID", string(browserCtxID)), zap.Error(err))
			}
		} else {
			s.logger.Debug("Disposed browser context.", zap.String("browserContextID", string(browserCtxID)))
		}
	}

	select {
	case <-sessionCtx.Done():
		s.logger.Debug("Browser session context closed.")
	case <-ctx.Done():
		s.logger.Warn("Context cancelled while waiting for session close.", zap.Error(ctx.Err()))
	case <-time.After(closeTimeout):
		s.logger.Warn("Timeout waiting for browser session to close.")
	}
}
