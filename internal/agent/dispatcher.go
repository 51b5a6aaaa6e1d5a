// File: internal/agent/dispatcher.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// performAction routes the classified intent to its handler. Routing keys
// off the event type first, then the recorded label where one type covers
// several destinations. Everything returns a human-readable outcome string;
// misses are reported, never raised.
func (a *Agent) performAction(ctx context.Context, page schemas.Page, intent schemas.ActionIntent) string {
	eventType := intent.EventType

	switch {
	case eventType.Is(schemas.NavigationClicked):
		switch intent.Label {
		case "mini-cart":
			return a.resolver.ClickMiniCart(ctx, page).Message
		case "search":
			return a.resolver.ClickSearch(ctx, page).Message
		case "account":
			return a.resolver.ClickAccount(ctx, page).Message
		default:
			return a.resolver.ClickNavigationText(ctx, page, intent.Label).Message
		}

	case eventType.Is(schemas.ButtonClicked):
		return a.resolver.ClickButton(ctx, page, intent.Label).Message

	case eventType.Is(schemas.TabNavigation) || strings.EqualFold(eventType.Label(), "tab"):
		return a.resolver.SwitchTab(ctx, page).Message

	case eventType.Is(schemas.FormSubmitted):
		return "Form submission logic not yet implemented"

	case strings.Contains(eventType.Label(), "Page Viewed") || strings.Contains(eventType.Label(), "Element Viewed"):
		return a.handleView(ctx, page, intent)

	case eventType.Is(schemas.ElementHovered):
		return a.resolver.Hover(ctx, page, intent).Message

	default:
		if intent.Label != "" {
			return a.resolver.Generic(ctx, page, intent).Message
		}
		return fmt.Sprintf("Unhandled event type: %s", eventType.Label())
	}
}

// handleView routes view events by their analytics coordinates: mini-cart
// category gets the deep scan, subtotal actions read the totals block,
// anything else is acknowledged in place.
func (a *Agent) handleView(ctx context.Context, page schemas.Page, intent schemas.ActionIntent) string {
	if strings.Contains(intent.Category, "mini-cart") {
		return a.resolver.ViewMiniCart(ctx, page).Message
	}
	if strings.Contains(intent.Action, "subtotal") {
		return a.resolver.ViewSubtotal(ctx, page).Message
	}
	current, _ := page.CurrentURL(ctx)
	return fmt.Sprintf("Viewed element: %s - %s. Current URL: %s", intent.Category, intent.Action, current)
}
