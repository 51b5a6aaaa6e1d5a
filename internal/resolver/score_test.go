// File: internal/resolver/score_test.go
package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/config"
)

func defaultResolverCfg() config.ResolverConfig {
	return config.NewDefaultConfig().Resolver()
}

func TestScoreCartElement(t *testing.T) {
	cfg := defaultResolverCfg()

	testCases := []struct {
		name     string
		el       schemas.CandidateElement
		expected int
	}{
		{
			name: "plain div with some text",
			// +2 clickable tag, +3 text length.
			el:       schemas.CandidateElement{Tag: "DIV", Text: "hello world okay"},
			expected: 5,
		},
		{
			name: "cart link without text",
			// -5 no text, +7 href, +2 clickable tag.
			el:       schemas.CandidateElement{Tag: "A", Href: "/cart"},
			expected: 4,
		},
		{
			name: "empty cart message",
			// +8 cart, +5 empty, +5 cart class, +2 div, +3 length.
			el:       schemas.CandidateElement{Tag: "DIV", Text: "your cart is empty", ClassName: "cart-flyout"},
			expected: 23,
		},
		{
			name: "decorative svg floors at zero",
			// -5 no text, -3 bare svg, clamped.
			el:       schemas.CandidateElement{Tag: "SVG"},
			expected: 0,
		},
		{
			name: "subtotal line",
			// +4 currency/total, +3 length, +2 div.
			el:       schemas.CandidateElement{Tag: "DIV", Text: "subtotal: $49.99"},
			expected: 9,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, scoreCartElement(tc.el, cfg))
		})
	}
}

func TestScoreCartElement_Ordering(t *testing.T) {
	cfg := defaultResolverCfg()

	rich := schemas.CandidateElement{
		Tag: "BUTTON", Text: "cart (2 items)", ClassName: "mini-cart-button",
		TestID: "cart-badge", AriaLabel: "view cart", Href: "/cart", HasChildren: true,
	}
	plain := schemas.CandidateElement{Tag: "DIV", Text: "shopping tips and more"}
	decorative := schemas.CandidateElement{Tag: "SVG"}

	assert.Greater(t, scoreCartElement(rich, cfg), scoreCartElement(plain, cfg))
	assert.Greater(t, scoreCartElement(plain, cfg), scoreCartElement(decorative, cfg))
	assert.Zero(t, scoreCartElement(decorative, cfg))
}

func TestScoreCartElement_ConfigurableWeights(t *testing.T) {
	el := schemas.CandidateElement{Tag: "DIV", Text: "stuff here ok", ClassName: "mini-cart"}

	base := defaultResolverCfg()
	boosted := base
	boosted.MiniCartClassBonus = base.MiniCartClassBonus + 10

	assert.Equal(t, scoreCartElement(el, base)+10, scoreCartElement(el, boosted))
}

func TestIsDecorativeSVG(t *testing.T) {
	assert.True(t, isDecorativeSVG(schemas.CandidateElement{Tag: "SVG"}))
	assert.True(t, isDecorativeSVG(schemas.CandidateElement{Tag: "svg", Text: "   "}))
	assert.False(t, isDecorativeSVG(schemas.CandidateElement{Tag: "SVG", AriaLabel: "cart"}))
	assert.False(t, isDecorativeSVG(schemas.CandidateElement{Tag: "SVG", TestID: "cart-icon"}))
	assert.False(t, isDecorativeSVG(schemas.CandidateElement{Tag: "DIV"}))
}

func TestSynthesizeSelectors(t *testing.T) {
	el := schemas.CandidateElement{
		Tag:       "DIV",
		Text:      "Cart is empty",
		ClassName: "cart-btn __generated x",
		ID:        "header-cart",
		TestID:    "mini-cart",
		ParentTag: "HEADER",
	}

	got := synthesizeSelectors(el)
	expected := []string{
		"#header-cart",
		"[data-testid='mini-cart']",
		".cart-btn",
		"div[class*='cart']",
		"text=Cart",
		"text=empty",
		"header > div",
	}
	assert.Equal(t, expected, got)
}

func TestSynthesizeSelectors_SkipsGeneratedClasses(t *testing.T) {
	el := schemas.CandidateElement{Tag: "SPAN", ClassName: "_x ab styled__badge:hover"}
	got := synthesizeSelectors(el)
	// "_x" is generated, "ab" too short; only the first two classes are
	// considered so the third never gets a chance.
	assert.Empty(t, got)
}

func TestMatchIndicators(t *testing.T) {
	assert.Equal(t, []string{"cart", "item"}, matchIndicators("Cart: 2 items", ""))
	assert.Equal(t, []string{"$", "checkout"}, matchIndicators("", `<span>$12</span><a>Checkout</a>`))
	assert.Empty(t, matchIndicators("nothing relevant", "<div></div>"))
}
