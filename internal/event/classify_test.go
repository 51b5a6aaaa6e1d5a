// File: internal/event/classify_test.go
package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/event"
)

func classify(t *testing.T, raw string) schemas.EventType {
	t.Helper()
	obj := mustDecode(t, raw)
	return event.Classify(obj, event.ExtractFields(obj))
}

func TestClassify_ExplicitEvent(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
		custom   bool
	}{
		{
			name:     "top level event wins verbatim",
			raw:      `{"event": "Navigation Clicked", "properties": {"eventAction": "viewed"}}`,
			expected: "Navigation Clicked",
		},
		{
			name:     "top level event beats nested eventType",
			raw:      `{"event": "Button Clicked", "eventType": "Element Viewed"}`,
			expected: "Button Clicked",
		},
		{
			name:     "unknown explicit label becomes custom",
			raw:      `{"event": "promo-banner-spin"}`,
			expected: "promo-banner-spin",
			custom:   true,
		},
		{
			name:     "nested event field is honored",
			raw:      `{"properties": {"event": "Element Viewed"}}`,
			expected: "Element Viewed",
		},
		{
			name:     "eventType used when event absent",
			raw:      `{"properties": {"event_type": "Form Submitted"}}`,
			expected: "Form Submitted",
		},
		{
			name:     "explicit label keeps its original casing",
			raw:      `{"event": "navigation clicked"}`,
			expected: "navigation clicked",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(t, tc.raw)
			assert.Equal(t, tc.expected, got.Label())
			assert.Equal(t, tc.custom, got.IsCustom())
		})
	}
}

func TestClassify_InferredFromCategoryAction(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected schemas.EventType
	}{
		{
			name:     "click with nav category",
			raw:      `{"page_type": "home", "eventCategory": "browse-nav", "eventAction": "clicked"}`,
			expected: schemas.NavigationClicked,
		},
		{
			name:     "click with header category",
			raw:      `{"eventCategory": "header-bar", "eventAction": "click"}`,
			expected: schemas.NavigationClicked,
		},
		{
			name:     "click with mini-cart category",
			raw:      `{"eventCategory": "mini-cart", "eventAction": "clicked"}`,
			expected: schemas.NavigationClicked,
		},
		{
			name:     "click with button category",
			raw:      `{"eventCategory": "cta-button", "eventAction": "clicked"}`,
			expected: schemas.ButtonClicked,
		},
		{
			name:     "click with btn shorthand",
			raw:      `{"eventCategory": "hero-btn", "eventAction": "click"}`,
			expected: schemas.ButtonClicked,
		},
		{
			name:     "plain click",
			raw:      `{"eventCategory": "product-tile", "eventAction": "clicked"}`,
			expected: schemas.ElementClicked,
		},
		{
			name:     "view action",
			raw:      `{"eventCategory": "product-tile", "eventAction": "viewed"}`,
			expected: schemas.ElementViewed,
		},
		{
			name: "mini-cart subtotal-view classifies as element viewed",
			// The view rule outranks the mini-cart category rule, so this
			// never becomes Mini-Cart Viewed.
			raw:      `{"eventCategory": "mini-cart", "eventAction": "subtotal-view"}`,
			expected: schemas.ElementViewed,
		},
		{
			name:     "submit action",
			raw:      `{"eventCategory": "checkout", "eventAction": "submit"}`,
			expected: schemas.FormSubmitted,
		},
		{
			name:     "form category without submit",
			raw:      `{"eventCategory": "signup-form", "eventAction": "focus"}`,
			expected: schemas.FormSubmitted,
		},
		{
			name:     "hover action",
			raw:      `{"eventCategory": "nav", "eventAction": "hover"}`,
			expected: schemas.ElementHovered,
		},
		{
			name:     "mouseover action",
			raw:      `{"eventCategory": "tooltip", "eventAction": "mouseover"}`,
			expected: schemas.ElementHovered,
		},
		{
			name:     "mini-cart category with neutral action",
			raw:      `{"eventCategory": "mini-cart", "eventAction": "open"}`,
			expected: schemas.MiniCartAction,
		},
		{
			name:     "nothing recognizable at all",
			raw:      `{"page_type": "home"}`,
			expected: schemas.GenericAction,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(t, tc.raw)
			assert.True(t, got.Is(tc.expected), "got %q, want %q", got.Label(), tc.expected.Label())
			assert.False(t, got.IsCustom())
		})
	}
}

func TestClassify_CustomFallbacks(t *testing.T) {
	t.Run("category only", func(t *testing.T) {
		got := classify(t, `{"eventCategory": "Promotions", "eventAction": "spin"}`)
		require.True(t, got.IsCustom())
		// Category and action are lowercased before the fallback label is built.
		assert.Equal(t, "Custom Action: promotions", got.Label())
	})

	t.Run("action only", func(t *testing.T) {
		got := classify(t, `{"eventAction": "Rotate"}`)
		require.True(t, got.IsCustom())
		assert.Equal(t, "Custom Action: rotate", got.Label())
	})
}

func TestBuildIntent(t *testing.T) {
	t.Run("standard fields and extras split", func(t *testing.T) {
		obj := mustDecode(t, `{
			"event": "Navigation Clicked",
			"properties": {
				"page_type": "Account",
				"eventCategory": "browse-nav",
				"eventAction": "clicked",
				"eventLabel": "mini-cart",
				"user_id": "u-42",
				"value": 3
			}
		}`)
		intent := event.BuildIntent(obj)

		assert.Equal(t, "Navigation Clicked", intent.EventType.Label())
		assert.Equal(t, "Account", intent.PageType)
		assert.Equal(t, "browse-nav", intent.Category)
		assert.Equal(t, "clicked", intent.Action)
		assert.Equal(t, "mini-cart", intent.Label)
		assert.Equal(t, "u-42", intent.Extras.String("userId"))
		assert.Equal(t, "3", intent.Extras.String("value"))
	})

	t.Run("missing fields come out empty not absent", func(t *testing.T) {
		obj := mustDecode(t, `{"page_type": "home"}`)
		intent := event.BuildIntent(obj)

		props := intent.Properties()
		assert.Equal(t, "home", props["page_type"])
		assert.Equal(t, "", props["eventCategory"])
		assert.Equal(t, "", props["eventAction"])
		assert.Equal(t, "", props["eventLabel"])
	})

	t.Run("tab events route as tab navigation", func(t *testing.T) {
		obj := mustDecode(t, `{"event": "tab", "page_type": "product"}`)
		intent := event.BuildIntent(obj)
		assert.Equal(t, "tab", intent.EventType.Label())
	})
}
