// api/schemas/browser.go
package schemas

import (
	"context"
	"time"
)

// WaitPolicy selects how much of the page lifecycle a navigation waits for.
type WaitPolicy int

const (
	// WaitNetworkIdle waits for the load event plus a network quiet period.
	WaitNetworkIdle WaitPolicy = iota
	// WaitDOMContent waits only for DOMContentLoaded. Used as the looser
	// fallback tier when the full-idle wait times out.
	WaitDOMContent
)

// Page is the set of browser primitives the resolution engine and the
// dispatcher program against. The production implementation drives a real
// Chrome tab over CDP; tests substitute a scripted fake.
//
// All operations are blocking and carry their own bounded timeout. A timeout
// means "this approach failed" to the caller, never "retry".
type Page interface {
	// Navigate loads a URL under the given wait policy.
	Navigate(ctx context.Context, url string, wait WaitPolicy, timeout time.Duration) error

	// CurrentURL returns the page's current location.
	CurrentURL(ctx context.Context) (string, error)

	// Count returns how many elements match the CSS selector.
	Count(ctx context.Context, selector string) (int, error)

	// Visible reports whether the index-th match of the selector is visible,
	// waiting up to timeout for it to become so.
	Visible(ctx context.Context, selector string, index int, timeout time.Duration) (bool, error)

	// Click clicks the index-th match of the selector.
	Click(ctx context.Context, selector string, index int, timeout time.Duration) error

	// Hover moves the pointer over the index-th match of the selector.
	Hover(ctx context.Context, selector string, index int, timeout time.Duration) error

	// Text returns the trimmed text content of the index-th match.
	Text(ctx context.Context, selector string, index int) (string, error)

	// CountText returns how many visible elements contain the given text,
	// matched case-insensitively as a substring.
	CountText(ctx context.Context, text string) (int, error)

	// ClickText clicks the index-th visible element containing the text.
	ClickText(ctx context.Context, text string, index int, timeout time.Duration) error

	// TextContentAt returns the text of the index-th element matching text.
	TextContentAt(ctx context.Context, text string, index int) (string, error)

	// HoverText moves the pointer over the index-th visible element
	// containing the text.
	HoverText(ctx context.Context, text string, index int, timeout time.Duration) error

	// Evaluate runs a JavaScript expression in the page and unmarshals the
	// result into out (may be nil when no result is wanted).
	Evaluate(ctx context.Context, expression string, out interface{}) error

	// PressKey dispatches a keyboard key (e.g. "Tab") to the page.
	PressKey(ctx context.Context, key string) error

	// WaitLoaded waits for the document to reach DOMContentLoaded, used
	// after click-triggered navigations.
	WaitLoaded(ctx context.Context, timeout time.Duration) error
}

// Rect is an element's bounding geometry as reported by the page.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CandidateElement describes a DOM node located during the diagnostic
// full-page scan. It is a detached snapshot: interaction re-locates the
// element through synthesized selectors rather than holding a live handle.
type CandidateElement struct {
	Tag         string `json:"tag"`
	Text        string `json:"text"`
	ClassName   string `json:"className"`
	ID          string `json:"id"`
	TestID      string `json:"testId"`
	AriaLabel   string `json:"ariaLabel"`
	Href        string `json:"href"`
	Role        string `json:"role"`
	Visible     bool   `json:"visible"`
	Bounds      Rect   `json:"bounds"`
	HasChildren bool   `json:"hasChildren"`
	ChildCount  int    `json:"childCount"`
	ParentTag   string `json:"parentTag"`
}
