// File: internal/resolver/tabs.go
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

var tabSelectors = []string{
	// Common tab patterns.
	`[role="tab"]`,
	`.tab`,
	`.tabs [role="button"]`,
	`[data-testid*="tab"]`,
	`.tab-button`,
	`.tab-link`,

	// Product page tabs.
	`.product-tabs [role="button"]`,
	`.product-info-tabs button`,
	`[aria-selected]`,

	// Review/info tabs.
	`.reviews-tab`,
	`.description-tab`,
	`.specifications-tab`,
	`.ingredients-tab`,

	// Navigation tabs.
	`nav [role="tab"]`,
	`.navigation-tabs button`,
}

type tabInfo struct {
	Text         string `json:"text"`
	AriaLabel    string `json:"ariaLabel"`
	AriaSelected string `json:"ariaSelected"`
	Role         string `json:"role"`
	ClassName    string `json:"className"`
	TagName      string `json:"tagName"`
}

type focusedElement struct {
	TagName   string `json:"tagName"`
	Text      string `json:"text"`
	ClassName string `json:"className"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	Role      string `json:"role"`
}

// SwitchTab resolves a tab-navigation event. UI tabs first (clicking the
// first unselected one), then free-text, then a synthetic keyboard Tab
// press reporting whatever took focus.
func (e *Engine) SwitchTab(ctx context.Context, page schemas.Page) Outcome {
	e.logger.Debug("Handling tab navigation event.")

	var foundTabs []string
	for _, selector := range tabSelectors {
		count, err := page.Count(ctx, selector)
		if err != nil || count == 0 {
			continue
		}
		foundTabs = append(foundTabs, fmt.Sprintf("%s (%d elements)", selector, count))

		visible, err := page.Visible(ctx, selector, 0, candidateTimeout)
		if err != nil || !visible {
			continue
		}

		var info *tabInfo
		expr := fmt.Sprintf(tabInfoScript, jsString(selector))
		if err := page.Evaluate(ctx, expr, &info); err != nil || info == nil {
			continue
		}
		e.logger.Debug("Tab candidate.", zap.String("selector", selector),
			zap.String("text", info.Text), zap.String("aria_selected", info.AriaSelected))

		if info.AriaSelected == "true" {
			return found("Tab already selected: %s | %s", orNone(info.Text), orNone(info.AriaLabel))
		}
		if err := page.Click(ctx, selector, 0, candidateTimeout); err != nil {
			continue
		}
		_ = page.WaitLoaded(ctx, e.cfg.Network().ActionTimeout)
		return found("Successfully clicked tab using %s. Tab info: %s | %s",
			selector, orNone(info.Text), orNone(info.AriaLabel))
	}

	// Free-text fallback: anything on the page mentioning "tab".
	if count, err := page.CountText(ctx, "tab"); err == nil && count > 0 {
		text, _ := page.TextContentAt(ctx, "tab", 0)
		if err := page.ClickText(ctx, "tab", 0, candidateTimeout); err == nil {
			return found("Clicked tab by text: %q", text)
		}
	}

	// Synthetic keyboard navigation.
	if err := page.PressKey(ctx, "Tab"); err == nil {
		var focused *focusedElement
		if err := page.Evaluate(ctx, focusedElementScript, &focused); err == nil && focused != nil {
			return found("Tab navigation completed. Focused element: %s", describeFocused(focused))
		}
		return found("Tab navigation completed, but no specific element focused")
	}

	if len(foundTabs) > 0 {
		if len(foundTabs) > 3 {
			foundTabs = foundTabs[:3]
		}
		return found("Found tab elements but couldn't interact: %s", strings.Join(foundTabs, ", "))
	}
	return notFound("No tab elements found on the page")
}

func describeFocused(f *focusedElement) string {
	parts := []string{f.TagName}
	if f.ID != "" {
		parts = append(parts, "#"+f.ID)
	}
	if f.Role != "" {
		parts = append(parts, "role="+f.Role)
	}
	if f.Type != "" {
		parts = append(parts, "type="+f.Type)
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		parts = append(parts, fmt.Sprintf("%q", truncate(text, 50)))
	}
	return strings.Join(parts, " ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
