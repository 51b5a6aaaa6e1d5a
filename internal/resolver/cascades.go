// File: internal/resolver/cascades.go
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// Selector cascades tuned against the live storefront. Order matters: the
// most specific patterns go first so a lucky early hit clicks the element
// the recorded event actually meant.
var miniCartSelectors = []string{
	// Specific cart button/link selectors.
	`button[aria-label*="cart" i]`,
	`a[aria-label*="cart" i]`,
	`button[title*="cart" i]`,
	`a[title*="cart" i]`,

	// Test ID selectors.
	`[data-testid="mini-cart"]`,
	`[data-testid*="cart"]`,
	`[data-qa*="cart"]`,

	// Common class and href patterns.
	`a[href*="/cart"]`,
	`button[class*="cart"]`,
	`.cart-button`,
	`.mini-cart`,
	`.cart-icon`,
	`#cart`,

	// SVG and icon wrappers.
	`button:has(svg[class*="cart"])`,
	`a:has(svg[class*="cart"])`,
	`button:has(i[class*="cart"])`,
	`a:has(i[class*="cart"])`,

	// Generic cart class selectors.
	`[class*="cart"][role="button"]`,
	`[class*="cart"]:has(svg)`,
	`button:has([class*="cart"])`,
	`a:has([class*="cart"])`,
}

var searchActivationSelectors = []string{
	`input[type="search"]`,
	`input[placeholder*="search" i]`,
	`[data-testid="search"]`,
	`.search-input`,
	`#search`,
}

var accountSelectors = []string{
	`a[href*="account"]`,
	`[data-testid="account"]`,
	`button[aria-label*="account" i]`,
	`.account-link`,
}

var searchButtonSelectors = []string{
	// Search input fields (most common).
	`input[type="search"]`,
	`input[placeholder*="search" i]`,

	// Search buttons and icons.
	`button[aria-label*="search" i]`,
	`button[title*="search" i]`,
	`[role="button"][aria-label*="search" i]`,
	`button:has(svg[class*="search"])`,
	`button:has([class*="search"])`,

	// Search-specific test IDs and classes.
	`[data-testid*="search"]`,
	`[data-qa*="search"]`,
	`.search-button`,
	`.search-icon`,
	`.search-trigger`,
	`#search`,
	`#search-button`,

	// Generic search patterns.
	`button[class*="search"]`,
	`a[class*="search"]`,
	`[class*="search"][onclick]`,

	// Icon wrappers.
	`button:has(i[class*="search"])`,
	`button:has([class*="magnify"])`,
	`button:has([class*="lens"])`,

	// Form-related search.
	`form[class*="search"] button`,
	`form[action*="search"] button[type="submit"]`,

	// Header/navigation search.
	`nav button[aria-label*="search" i]`,
	`header button[aria-label*="search" i]`,
	`.header button[class*="search"]`,
}

var searchTextFallbacks = []string{"Search", "search", "🔍", "Find"}

// ClickMiniCart clicks the header mini-cart through the structural cascade,
// then a free-text pass, then the optional model hint.
func (e *Engine) ClickMiniCart(ctx context.Context, page schemas.Page) Outcome {
	e.logger.Debug("Looking for mini-cart elements.")

	postClick := e.cfg.Network().ActionTimeout
	if selector, ok := e.clickCascade(ctx, page, miniCartSelectors, postClick); ok {
		newURL, _ := page.CurrentURL(ctx)
		if strings.Contains(strings.ToLower(newURL), "cart") {
			return found("Successfully clicked mini-cart using selector: %s. Navigated to cart: %s", selector, newURL)
		}
		return found("Successfully clicked mini-cart using selector: %s. Current URL: %s", selector, newURL)
	}

	// Free-text pass over anything that mentions the cart.
	if e.clickByText(ctx, page, "cart", e.cfg.Resolver().MaxCandidates) {
		_ = page.WaitLoaded(ctx, postClick)
		newURL, _ := page.CurrentURL(ctx)
		return found("Successfully clicked cart element by text. Current URL: %s", newURL)
	}

	if outcome, ok := e.tryHintedClick(ctx, page, "the header mini-cart icon or link"); ok {
		return outcome
	}
	return notFound("Mini-cart element not found with any selector")
}

// ClickSearch activates the search input.
func (e *Engine) ClickSearch(ctx context.Context, page schemas.Page) Outcome {
	if selector, ok := e.clickFirstVisible(ctx, page, searchActivationSelectors, candidateTimeout); ok {
		url, _ := page.CurrentURL(ctx)
		return found("Successfully clicked search via %s. Current URL: %s", selector, url)
	}
	return notFound("Search element not found")
}

// ClickAccount clicks the account entry point in the header.
func (e *Engine) ClickAccount(ctx context.Context, page schemas.Page) Outcome {
	if selector, ok := e.clickFirstVisible(ctx, page, accountSelectors, candidateTimeout); ok {
		_ = page.WaitLoaded(ctx, e.cfg.Network().ActionTimeout)
		url, _ := page.CurrentURL(ctx)
		return found("Successfully clicked account via %s. Current URL: %s", selector, url)
	}
	return notFound("Account element not found")
}

// ClickNavigationText handles generic navigation clicks by recorded label.
func (e *Engine) ClickNavigationText(ctx context.Context, page schemas.Page, label string) Outcome {
	if label == "" {
		return notFound("Navigation element has no label to match on")
	}
	if err := page.ClickText(ctx, label, 0, candidateTimeout); err != nil {
		return notFound("Navigation element %q not found", label)
	}
	_ = page.WaitLoaded(ctx, e.cfg.Network().ActionTimeout)
	url, _ := page.CurrentURL(ctx)
	return found("Clicked navigation element %q. Current URL: %s", label, url)
}

// ClickButton clicks a button by recorded label. Search-flavored labels get
// the widened search cascade; anything else tries accessible-name style
// selectors before falling back to text.
func (e *Engine) ClickButton(ctx context.Context, page schemas.Page, label string) Outcome {
	e.logger.Debug("Looking for button.", zap.String("label", label))

	if strings.Contains(strings.ToLower(label), "search") {
		return e.clickSearchButton(ctx, page, label)
	}

	escaped := cssEscape(label)
	buttonSelectors := []string{
		fmt.Sprintf(`button[aria-label*="%s" i]`, escaped),
		fmt.Sprintf(`button[title*="%s" i]`, escaped),
		fmt.Sprintf(`[role="button"][aria-label*="%s" i]`, escaped),
		fmt.Sprintf(`input[type="button"][value*="%s" i]`, escaped),
		fmt.Sprintf(`input[type="submit"][value*="%s" i]`, escaped),
	}
	if label != "" {
		if selector, ok := e.clickFirstVisible(ctx, page, buttonSelectors, candidateTimeout); ok {
			return found("Successfully clicked button using selector: %s", selector)
		}

		// Last resort: anything on the page carrying that text.
		if err := page.ClickText(ctx, label, 0, candidateTimeout); err == nil {
			return found("Successfully clicked element with text %q", label)
		}
	}

	return notFound("Button %q not found with any method", label)
}

// clickSearchButton runs the widened cascade for search buttons and icons.
func (e *Engine) clickSearchButton(ctx context.Context, page schemas.Page, label string) Outcome {
	e.logger.Debug("Using enhanced search button detection.", zap.String("label", label))

	if selector, ok := e.clickCascade(ctx, page, searchButtonSelectors, e.cfg.Network().ActionTimeout); ok {
		return found("Successfully clicked search using selector: %s", selector)
	}

	for _, text := range searchTextFallbacks {
		if e.clickByText(ctx, page, text, 2) {
			return found("Successfully clicked search by text: %q", text)
		}
	}

	return notFound("Search button/icon not found. Tried %d selectors and text patterns.", len(searchButtonSelectors))
}

// tryHintedClick asks the optional hint provider for one selector and tries
// it. Strictly best-effort; any failure falls back to the caller's miss.
func (e *Engine) tryHintedClick(ctx context.Context, page schemas.Page, goal string) (Outcome, bool) {
	if e.hints == nil {
		return Outcome{}, false
	}

	var outline string
	if err := page.Evaluate(ctx, domOutlineScript, &outline); err != nil {
		e.logger.Debug("DOM outline capture for hint failed.", zap.Error(err))
		return Outcome{}, false
	}

	selector, err := e.hints.SuggestSelector(ctx, goal, outline)
	if err != nil || selector == "" {
		if err != nil {
			e.logger.Debug("Selector hint unavailable.", zap.Error(err))
		}
		return Outcome{}, false
	}

	e.logger.Debug("Trying hinted selector.", zap.String("selector", selector))
	if err := page.Click(ctx, selector, 0, candidateTimeout); err != nil {
		return Outcome{}, false
	}
	return found("Successfully clicked hinted selector: %s", selector), true
}
