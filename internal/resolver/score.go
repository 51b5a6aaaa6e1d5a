// File: internal/resolver/score.go
package resolver

import (
	"strings"

	"github.com/xkilldash9x/replay-cli/api/schemas"
	"github.com/xkilldash9x/replay-cli/internal/config"
)

// scoreCartElement ranks a scanned candidate by how likely it is to be the
// mini-cart. The weights were hand-tuned against the live storefront; the
// headline bonuses live in ResolverConfig so they can be adjusted without a
// rebuild, the fine-grained ones stay literal.
func scoreCartElement(el schemas.CandidateElement, cfg config.ResolverConfig) int {
	score := 0
	text := strings.ToLower(el.Text)
	className := strings.ToLower(el.ClassName)
	tag := strings.ToLower(el.Tag)

	// No text at all is usually a decorative node.
	if strings.TrimSpace(text) == "" {
		score -= cfg.NoTextPenalty
	}

	// High-value indicators.
	if strings.Contains(className, "mini-cart") || strings.Contains(className, "minicart") {
		score += cfg.MiniCartClassBonus
	}
	if strings.Contains(el.TestID, "cart") {
		score += cfg.CartAttrBonus
	}
	if strings.Contains(el.AriaLabel, "cart") {
		score += cfg.CartAttrBonus
	}
	if strings.Contains(el.Href, "/cart") {
		score += 7
	}

	// Cart text content.
	if strings.Contains(text, "cart") {
		score += 8
		if strings.Contains(text, "empty") {
			// "cart is empty" is very specific.
			score += 5
		}
		if strings.Contains(text, "item") {
			score += 3
		}
	}

	// Medium-value indicators.
	if strings.Contains(className, "cart") {
		score += 5
	}
	if tag == "button" || tag == "a" || tag == "div" {
		score += 2
	}
	if strings.Contains(text, "$") || strings.Contains(text, "total") || strings.Contains(text, "subtotal") {
		score += 4
	}

	// Meaningful text length.
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 10 {
		score += 3
	} else if len(trimmed) > 3 {
		score += 1
	}

	// SVGs without meaningful attributes are icon chrome.
	if tag == "svg" && el.AriaLabel == "" && el.TestID == "" {
		score -= 3
	}

	if strings.Contains(text, "shopping") {
		score += 2
	}
	if strings.Contains(text, "checkout") {
		score += 2
	}
	if el.HasChildren && len(text) > 5 {
		score += 2
	}

	if score < 0 {
		return 0
	}
	return score
}

// isDecorativeSVG reports an SVG with neither text nor identifying
// attributes. The scan picks these up constantly; they are never the cart.
func isDecorativeSVG(el schemas.CandidateElement) bool {
	return strings.EqualFold(el.Tag, "svg") &&
		strings.TrimSpace(el.Text) == "" &&
		el.AriaLabel == "" &&
		el.TestID == ""
}
