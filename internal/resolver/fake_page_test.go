// File: internal/resolver/fake_page_test.go
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// fakePage is a scripted stand-in for a live browser tab. Selector and text
// lookups resolve against the maps; everything else records what happened.
type fakePage struct {
	counts      map[string]int
	visible     map[string]bool
	texts       map[string]string
	textCounts  map[string]int
	textContent map[string]string
	url         string

	// evalFn, when set, services Evaluate calls. evalJSON is a fallback
	// keyed by a distinctive substring of the expression; values are
	// round-tripped through JSON into out.
	evalFn   func(expr string, out interface{}) error
	evalJSON map[string]interface{}

	clicked     []string
	textClicked []string
	hovered     []string
	pressed     []string
}

var _ schemas.Page = (*fakePage)(nil)

func newFakePage() *fakePage {
	return &fakePage{
		counts:      map[string]int{},
		visible:     map[string]bool{},
		texts:       map[string]string{},
		textCounts:  map[string]int{},
		textContent: map[string]string{},
		evalJSON:    map[string]interface{}{},
		url:         "https://www.chewy.com/",
	}
}

func (f *fakePage) Navigate(context.Context, string, schemas.WaitPolicy, time.Duration) error {
	return nil
}

func (f *fakePage) CurrentURL(context.Context) (string, error) { return f.url, nil }

func (f *fakePage) Count(_ context.Context, selector string) (int, error) {
	return f.counts[selector], nil
}

func (f *fakePage) Visible(_ context.Context, selector string, _ int, _ time.Duration) (bool, error) {
	return f.visible[selector], nil
}

func (f *fakePage) Click(_ context.Context, selector string, index int, _ time.Duration) error {
	if !f.visible[selector] {
		return fmt.Errorf("element %q[%d] not visible", selector, index)
	}
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakePage) Hover(_ context.Context, selector string, _ int, _ time.Duration) error {
	if !f.visible[selector] {
		return fmt.Errorf("element %q not visible", selector)
	}
	f.hovered = append(f.hovered, selector)
	return nil
}

func (f *fakePage) Text(_ context.Context, selector string, _ int) (string, error) {
	return f.texts[selector], nil
}

func (f *fakePage) CountText(_ context.Context, text string) (int, error) {
	return f.textCounts[text], nil
}

func (f *fakePage) ClickText(_ context.Context, text string, index int, _ time.Duration) error {
	if f.textCounts[text] <= index {
		return fmt.Errorf("no visible element containing %q at index %d", text, index)
	}
	f.textClicked = append(f.textClicked, text)
	return nil
}

func (f *fakePage) TextContentAt(_ context.Context, text string, _ int) (string, error) {
	content, ok := f.textContent[text]
	if !ok {
		return "", fmt.Errorf("no element containing %q", text)
	}
	return content, nil
}

func (f *fakePage) HoverText(_ context.Context, text string, _ int, _ time.Duration) error {
	if f.textCounts[text] == 0 {
		return fmt.Errorf("no visible element containing %q", text)
	}
	f.hovered = append(f.hovered, text)
	return nil
}

func (f *fakePage) Evaluate(_ context.Context, expr string, out interface{}) error {
	if f.evalFn != nil {
		return f.evalFn(expr, out)
	}
	for key, value := range f.evalJSON {
		if key != "" && strings.Contains(expr, key) {
			return roundTrip(value, out)
		}
	}
	return fmt.Errorf("no scripted result for expression")
}

func (f *fakePage) PressKey(_ context.Context, key string) error {
	f.pressed = append(f.pressed, key)
	return nil
}

func (f *fakePage) WaitLoaded(context.Context, time.Duration) error { return nil }

func roundTrip(value, out interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
