// File: internal/resolver/actions.go
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// Hover moves the pointer over the element named by the intent's label,
// falling back to its category.
func (e *Engine) Hover(ctx context.Context, page schemas.Page, intent schemas.ActionIntent) Outcome {
	target := intent.Label
	if target == "" {
		target = intent.Category
	}
	if target == "" {
		return notFound("Could not find element to hover: no label or category")
	}

	if err := page.HoverText(ctx, target, 0, candidateTimeout); err != nil {
		return notFound("Could not find element to hover: %s", target)
	}
	return found("Hovered over: %s", target)
}

// Generic handles any action without a dedicated route: find the labeled
// element when there is one, click it when the action says click, otherwise
// just report what was processed. Always a success: generic actions carry
// no contract strong enough to fail against.
func (e *Engine) Generic(ctx context.Context, page schemas.Page, intent schemas.ActionIntent) Outcome {
	summary := fmt.Sprintf("Category: %s, Action: %s, Label: %s",
		intent.Category, intent.Action, intent.Label)

	if intent.Label != "" {
		if count, err := page.CountText(ctx, intent.Label); err == nil && count > 0 {
			if strings.Contains(intent.Action, "click") {
				if err := page.ClickText(ctx, intent.Label, 0, candidateTimeout); err == nil {
					return found("Clicked element: %s", intent.Label)
				}
			} else {
				return found("Found element: %s - %s", intent.Label, summary)
			}
		}
	}

	url, _ := page.CurrentURL(ctx)
	return found("Processed generic action: %s. Current URL: %s", summary, url)
}
