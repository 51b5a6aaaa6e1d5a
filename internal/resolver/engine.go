// File: internal/resolver/engine.go

// Package resolver turns classified intents into concrete element
// interactions. Recorded events carry no stable element references, so every
// interaction runs as a cascade: structural selectors first, free-text
// matching second, and for cart views a full-page diagnostic scan with
// heuristic scoring. A cascade that exhausts reports what it tried; it never
// errors the run.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/config"
)

const (
	// Visibility wait per candidate while walking a cascade.
	candidateTimeout = 2 * time.Second
	// The free-text fallback pass is kept cheap.
	textFallbackTimeout = time.Second
)

// HintProvider supplies a last-resort selector suggestion once every
// structural cascade has exhausted. Implemented by llmclient; nil disables
// the fallback entirely.
type HintProvider interface {
	SuggestSelector(ctx context.Context, goal, domOutline string) (string, error)
}

// Outcome is the typed result of one resolution attempt. Found=false is a
// normal, reportable miss, not an error: the harness worked, the page just
// did not cooperate.
type Outcome struct {
	Found   bool
	Message string
}

func found(format string, args ...interface{}) Outcome {
	return Outcome{Found: true, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) Outcome {
	return Outcome{Found: false, Message: fmt.Sprintf(format, args...)}
}

// Engine is the element resolution engine. It is stateless across calls;
// all page state lives in the session it is handed per call.
type Engine struct {
	cfg    config.Interface
	logger *zap.Logger
	hints  HintProvider
}

// New builds a resolution engine. hints may be nil.
func New(cfg config.Interface, logger *zap.Logger, hints HintProvider) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.Named("Resolver"),
		hints:  hints,
	}
}

// clickCascade walks selectors in order, trying up to matchesPerSelector
// visible matches of each, and clicks the first one that works. waitLoad
// controls whether a post-click document load is awaited.
func (e *Engine) clickCascade(ctx context.Context, page schemas.Page, selectors []string, waitLoad time.Duration) (string, bool) {
	for _, selector := range selectors {
		count, err := page.Count(ctx, selector)
		if err != nil || count == 0 {
			continue
		}
		e.logger.Debug("Selector matched.", zap.String("selector", selector), zap.Int("count", count))

		tries := count
		if max := e.cfg.Resolver().MaxCandidates; tries > max {
			tries = max
		}
		for i := 0; i < tries; i++ {
			if err := page.Click(ctx, selector, i, candidateTimeout); err != nil {
				e.logger.Debug("Candidate click failed.",
					zap.String("selector", selector), zap.Int("index", i), zap.Error(err))
				continue
			}
			if waitLoad > 0 {
				// Post-click loads are best-effort; SPAs often never fire one.
				_ = page.WaitLoaded(ctx, waitLoad)
			}
			return selector, true
		}
	}
	return "", false
}

// clickFirstVisible clicks the first visible match of the first selector
// that has one. Unlike clickCascade it never tries a second match.
func (e *Engine) clickFirstVisible(ctx context.Context, page schemas.Page, selectors []string, timeout time.Duration) (string, bool) {
	for _, selector := range selectors {
		visible, err := page.Visible(ctx, selector, 0, timeout)
		if err != nil || !visible {
			continue
		}
		if err := page.Click(ctx, selector, 0, timeout); err != nil {
			e.logger.Debug("Click failed.", zap.String("selector", selector), zap.Error(err))
			continue
		}
		return selector, true
	}
	return "", false
}

// clickByText clicks the first visible element containing label.
func (e *Engine) clickByText(ctx context.Context, page schemas.Page, text string, limit int) bool {
	count, err := page.CountText(ctx, text)
	if err != nil || count == 0 {
		return false
	}
	if count > limit {
		count = limit
	}
	for i := 0; i < count; i++ {
		if err := page.ClickText(ctx, text, i, textFallbackTimeout); err != nil {
			continue
		}
		return true
	}
	return false
}

// cssEscape makes a raw label safe for embedding inside a quoted attribute
// selector.
func cssEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
