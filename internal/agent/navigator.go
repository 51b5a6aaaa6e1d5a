// File: internal/agent/navigator.go
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

const accountLinkTimeout = 3 * time.Second

// Account entry points in the header, tried before falling back to the
// direct /account URL.
var accountNavSelectors = []string{
	`a[href*="account"]`,
	`a[href*="signin"]`,
	`a[href*="login"]`,
	`[data-testid*="account"]`,
	`[data-testid*="signin"]`,
	`button[aria-label*="account" i]`,
	`.account-link`,
	`.signin-link`,
}

var searchPageSelectors = []string{
	`input[type="search"]`,
	`input[placeholder*="search" i]`,
	`[data-testid="search"]`,
	`.search-input`,
}

// navigateToPageType lands the session on the page the event was recorded
// on. Table hit first, then the special-case fallbacks, then an explicit
// non-fatal miss. All errors are stringified into the outcome; navigation
// problems never abort the event.
func (a *Agent) navigateToPageType(ctx context.Context, page schemas.Page, pageType string) string {
	if url, ok := a.pages.URL(pageType); ok {
		a.logger.Debug("Navigating to mapped page.", zap.String("page_type", pageType), zap.String("url", url))
		if err := page.Navigate(ctx, url, schemas.WaitDOMContent, a.cfg.Network().NavigationTimeout); err != nil {
			return fmt.Sprintf("Error navigating to %s: %v", pageType, err)
		}
		current, _ := page.CurrentURL(ctx)
		return fmt.Sprintf("Navigated to %s page: %s", pageType, current)
	}

	switch strings.ToLower(pageType) {
	case "account":
		return a.navigateToAccount(ctx, page)
	case "cart":
		return a.navigateToCart(ctx, page)
	case "search":
		return a.activateSearch(ctx, page)
	}
	return fmt.Sprintf("Unknown page_type: %s. No mapping found in CSV and no fallback available.", pageType)
}

// navigateToAccount clicks an account entry point, falling back to the
// direct URL.
func (a *Agent) navigateToAccount(ctx context.Context, page schemas.Page) string {
	for _, selector := range accountNavSelectors {
		visible, err := page.Visible(ctx, selector, 0, accountLinkTimeout)
		if err != nil || !visible {
			continue
		}
		a.logger.Debug("Found account link.", zap.String("selector", selector))
		if err := page.Click(ctx, selector, 0, accountLinkTimeout); err != nil {
			continue
		}
		_ = page.WaitLoaded(ctx, a.cfg.Network().FallbackTimeout)
		current, _ := page.CurrentURL(ctx)
		return fmt.Sprintf("Navigated to account page via %s: %s", selector, current)
	}

	accountURL := strings.TrimRight(a.cfg.Site().BaseURL(), "/") + "/account"
	a.logger.Debug("Trying direct account URL.", zap.String("url", accountURL))
	if err := page.Navigate(ctx, accountURL, schemas.WaitDOMContent, a.cfg.Network().FallbackTimeout); err != nil {
		return fmt.Sprintf("Could not navigate to account page: %v", err)
	}
	current, _ := page.CurrentURL(ctx)
	return fmt.Sprintf("Navigated to account page via direct URL: %s", current)
}

func (a *Agent) navigateToCart(ctx context.Context, page schemas.Page) string {
	cartURL := strings.TrimRight(a.cfg.Site().BaseURL(), "/") + "/cart"
	if err := page.Navigate(ctx, cartURL, schemas.WaitDOMContent, a.cfg.Network().FallbackTimeout); err != nil {
		return fmt.Sprintf("Could not navigate to cart page: %v", err)
	}
	current, _ := page.CurrentURL(ctx)
	return fmt.Sprintf("Navigated to cart page: %s", current)
}

// activateSearch clicks the search input rather than navigating; the site
// has no standalone search landing page.
func (a *Agent) activateSearch(ctx context.Context, page schemas.Page) string {
	for _, selector := range searchPageSelectors {
		visible, err := page.Visible(ctx, selector, 0, 2*time.Second)
		if err != nil || !visible {
			continue
		}
		if err := page.Click(ctx, selector, 0, 2*time.Second); err != nil {
			continue
		}
		return fmt.Sprintf("Activated search via %s", selector)
	}
	return "Search element not found"
}
