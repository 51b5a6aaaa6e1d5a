// File: internal/resolver/view.go
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// Content keywords that prove a located element really is cart UI and not
// a coincidental class-name match.
var cartIndicators = []string{"cart", "item", "total", "subtotal", "$", "empty", "checkout", "bag"}

// Free-text patterns for the last-ditch cart search.
var fallbackCartPatterns = []string{
	"Shopping Cart",
	"My Cart",
	"Bag",
	"Checkout",
	"$",
	"item",
	"total",
	"subtotal",
}

var subtotalSelectors = []string{
	`[class*="subtotal"]`,
	`[data-testid*="subtotal"]`,
	`.cart-subtotal`,
	`.total`,
	`[class*="total"]`,
}

// ViewMiniCart inspects the mini-cart without clicking it: a full-page
// diagnostic scan, heuristic scoring, then per-candidate verification
// through synthesized selectors.
func (e *Engine) ViewMiniCart(ctx context.Context, page schemas.Page) Outcome {
	e.logger.Debug("Performing deep search for mini-cart elements.")

	var candidates []schemas.CandidateElement
	if err := page.Evaluate(ctx, cartScanScript, &candidates); err != nil {
		return notFound("Error in deep cart search: %v", err)
	}
	e.logger.Debug("Cart scan complete.", zap.Int("candidates", len(candidates)))

	if len(candidates) == 0 {
		return e.fallbackCartSearch(ctx, page)
	}

	resolverCfg := e.cfg.Resolver()
	type scored struct {
		score int
		el    schemas.CandidateElement
	}
	ranked := make([]scored, 0, len(candidates))
	for _, el := range candidates {
		ranked = append(ranked, scored{score: scoreCartElement(el, resolverCfg), el: el})
	}
	// Stable sort keeps document order among ties, so ranking is
	// deterministic over a static DOM.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	for i, r := range ranked {
		if i >= 5 {
			break
		}
		e.logger.Debug("Cart candidate.",
			zap.Int("rank", i+1), zap.Int("score", r.score),
			zap.String("tag", r.el.Tag), zap.String("class", r.el.ClassName))
	}

	tried := ranked
	if len(tried) > 10 {
		tried = tried[:10]
	}
	for _, r := range tried {
		if r.score < resolverCfg.MinScore {
			e.logger.Debug("Skipping low-score candidate.", zap.String("tag", r.el.Tag), zap.Int("score", r.score))
			continue
		}
		if isDecorativeSVG(r.el) {
			e.logger.Debug("Skipping empty SVG candidate.")
			continue
		}
		if outcome := e.tryInteract(ctx, page, r.el); outcome.Found {
			return outcome
		}
	}

	return notFound("Mini-cart elements found but could not interact with any successfully")
}

// probeInfo is what elementProbeScript reads back for verification.
type probeInfo struct {
	Text      string       `json:"text"`
	Tag       string       `json:"tag"`
	Visible   bool         `json:"visible"`
	Bounds    schemas.Rect `json:"bounds"`
	ClassName string       `json:"className"`
	ID        string       `json:"id"`
	InnerHTML string       `json:"innerHTML"`
	Children  int          `json:"children"`
}

// tryInteract re-locates a scanned candidate through synthesized selectors
// and verifies the element actually carries cart content. Scan results are
// detached snapshots; by the time we act, only a selector can find the node
// again.
func (e *Engine) tryInteract(ctx context.Context, page schemas.Page, el schemas.CandidateElement) Outcome {
	selectors := synthesizeSelectors(el)
	if len(selectors) == 0 {
		return notFound("No usable selectors for candidate %s", el.Tag)
	}

	for _, selector := range selectors {
		if strings.HasPrefix(selector, "text=") {
			needle := strings.TrimPrefix(selector, "text=")
			content, err := page.TextContentAt(ctx, needle, 0)
			if err != nil || content == "" {
				continue
			}
			if indicators := matchIndicators(content, ""); len(indicators) > 0 {
				return found("Successfully viewed mini-cart using %s. Found indicators: %v", selector, indicators)
			}
			continue
		}

		count, err := page.Count(ctx, selector)
		if err != nil || count == 0 {
			continue
		}
		visible, err := page.Visible(ctx, selector, 0, candidateTimeout)
		if err != nil || !visible {
			continue
		}

		var info *probeInfo
		expr := fmt.Sprintf(elementProbeScript, jsString(selector))
		if err := page.Evaluate(ctx, expr, &info); err != nil || info == nil {
			continue
		}

		if indicators := matchIndicators(info.Text, info.InnerHTML); len(indicators) > 0 {
			return found("Successfully viewed mini-cart using %s. Found indicators: %v. Text: %q",
				selector, indicators, truncate(strings.TrimSpace(info.Text), 100))
		}
		e.logger.Debug("Element found but no cart indicators in content.", zap.String("selector", selector))
	}

	return notFound("Could not interact with candidate. Tried %d selectors.", len(selectors))
}

// synthesizeSelectors builds selector strategies for a detached candidate,
// most specific first: id, test id, leading classes, cart-class attribute,
// distinctive text words, parent-child shape.
func synthesizeSelectors(el schemas.CandidateElement) []string {
	var selectors []string

	if el.ID != "" {
		selectors = append(selectors, "#"+el.ID)
	}
	if el.TestID != "" {
		selectors = append(selectors, fmt.Sprintf("[data-testid='%s']", el.TestID))
	}

	if el.ClassName != "" {
		classes := strings.Fields(el.ClassName)
		if len(classes) > 2 {
			classes = classes[:2]
		}
		for _, cls := range classes {
			// Skip very short or generated class names.
			if len(cls) <= 2 || strings.HasPrefix(cls, "_") {
				continue
			}
			clean := strings.ReplaceAll(cls, "__", "-")
			clean = strings.ReplaceAll(clean, ":", "")
			if clean != "" {
				selectors = append(selectors, "."+clean)
			}
		}
	}

	if strings.Contains(strings.ToLower(el.ClassName), "cart") {
		selectors = append(selectors, fmt.Sprintf("%s[class*='cart']", strings.ToLower(el.Tag)))
	}

	if strings.Contains(strings.ToLower(el.Text), "cart") {
		words := strings.Fields(strings.TrimSpace(el.Text))
		if len(words) > 3 {
			words = words[:3]
		}
		for _, word := range words {
			lower := strings.ToLower(word)
			if len(word) > 3 && (lower == "cart" || lower == "empty" || lower == "items") {
				selectors = append(selectors, "text="+word)
			}
		}
	}

	if el.ParentTag != "" {
		selectors = append(selectors, fmt.Sprintf("%s > %s", strings.ToLower(el.ParentTag), strings.ToLower(el.Tag)))
	}

	return selectors
}

func matchIndicators(text, innerHTML string) []string {
	text = strings.ToLower(text)
	innerHTML = strings.ToLower(innerHTML)
	var out []string
	for _, ind := range cartIndicators {
		if strings.Contains(text, ind) || strings.Contains(innerHTML, ind) {
			out = append(out, ind)
		}
	}
	return out
}

// fallbackCartSearch is the last resort when the scan finds nothing: probe
// common e-commerce text patterns directly.
func (e *Engine) fallbackCartSearch(ctx context.Context, page schemas.Page) Outcome {
	e.logger.Debug("Running fallback cart search patterns.")

	var foundPatterns []string
	for _, pattern := range fallbackCartPatterns {
		count, err := page.CountText(ctx, pattern)
		if err != nil || count == 0 {
			continue
		}
		foundPatterns = append(foundPatterns, fmt.Sprintf("%s: %d elements", pattern, count))

		content, err := page.TextContentAt(ctx, pattern, 0)
		if err == nil && content != "" && len(content) < 200 {
			return found("Fallback found cart-related content %q: %s", pattern, truncate(content, 100))
		}
	}

	if len(foundPatterns) > 0 {
		return found("Fallback search found: %s", strings.Join(foundPatterns, ", "))
	}
	return notFound("Fallback search found no cart-related elements")
}

// ViewSubtotal reads the subtotal line from whatever totals block is
// visible.
func (e *Engine) ViewSubtotal(ctx context.Context, page schemas.Page) Outcome {
	e.logger.Debug("Looking for subtotal information.")

	for _, selector := range subtotalSelectors {
		visible, err := page.Visible(ctx, selector, 0, candidateTimeout)
		if err != nil || !visible {
			continue
		}
		text, err := page.Text(ctx, selector, 0)
		if err != nil {
			continue
		}
		return found("Subtotal viewed: %s", text)
	}
	return notFound("Subtotal information not found")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
