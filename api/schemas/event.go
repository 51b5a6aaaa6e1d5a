// api/schemas/event.go
package schemas

import "strings"

// Fields is the canonical single-level field map produced by the normalizer.
// Keys are drawn from the canonical vocabulary (page_type, eventCategory,
// eventAction, eventLabel, timestamp, userId, sessionId, url, path, value,
// event, eventType); values are scalars (string, number, bool) as decoded
// from the raw event JSON.
type Fields map[string]interface{}

// String returns the string form of a field value, or "" when the key is
// absent. Numbers and booleans are stringified the way the wire format
// presented them.
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Has reports whether the key was captured at all.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// EventType is the closed set of action categories the dispatcher routes on.
// Anything the classifier cannot map to a known variant becomes a Custom
// value carrying the original free-form label.
type EventType struct {
	kind  eventKind
	label string
}

type eventKind int

const (
	kindKnown eventKind = iota
	kindCustom
)

// Known event types, in the order the classifier's rule table produces them.
var (
	NavigationClicked = known("Navigation Clicked")
	ButtonClicked     = known("Button Clicked")
	ElementClicked    = known("Element Clicked")
	ElementViewed     = known("Element Viewed")
	FormSubmitted     = known("Form Submitted")
	ElementHovered    = known("Element Hovered")
	MiniCartViewed    = known("Mini-Cart Viewed")
	MiniCartAction    = known("Mini-Cart Action")
	TabNavigation     = known("Tab Navigation")
	GenericAction     = known("Generic Action")
)

func known(label string) EventType {
	return EventType{kind: kindKnown, label: label}
}

var knownTypes = []EventType{
	NavigationClicked,
	ButtonClicked,
	ElementClicked,
	ElementViewed,
	FormSubmitted,
	ElementHovered,
	MiniCartViewed,
	MiniCartAction,
	TabNavigation,
	GenericAction,
}

// FromLabel maps a wire-level event string onto the closed set while
// preserving the label text exactly as it arrived. Unmatched labels become
// Custom values.
func FromLabel(label string) EventType {
	for _, kt := range knownTypes {
		if strings.EqualFold(label, kt.label) {
			return EventType{kind: kindKnown, label: label}
		}
	}
	return Custom(label)
}

// Custom wraps an unrecognized event label. The label is preserved verbatim
// so the result descriptor reports exactly what arrived on the wire.
func Custom(label string) EventType {
	return EventType{kind: kindCustom, label: label}
}

// Label returns the human-readable event type string.
func (e EventType) Label() string { return e.label }

// IsCustom reports whether this type fell through the known rule table.
func (e EventType) IsCustom() bool { return e.kind == kindCustom }

// IsZero reports an unset EventType.
func (e EventType) IsZero() bool { return e.label == "" }

// Is compares two event types by label, case-insensitively. The dispatcher
// uses this for routing so wire-level variants ("tab", "Tab") still match.
func (e EventType) Is(other EventType) bool {
	return strings.EqualFold(e.label, other.label)
}

// ActionIntent is the fully classified event: what to do, where to do it,
// and the property bag the handlers consult.
type ActionIntent struct {
	EventType EventType `json:"event_type"`
	PageType  string    `json:"page_type"`

	// The four standard analytics fields, always present (possibly empty).
	Category string `json:"eventCategory"`
	Action   string `json:"eventAction"`
	Label    string `json:"eventLabel"`

	// Extras carries every other captured scalar untouched.
	Extras Fields `json:"extras,omitempty"`
}

// Properties flattens the intent back into the property map shape used by
// the execution result, mirroring the incoming analytics payload layout.
func (a ActionIntent) Properties() map[string]interface{} {
	props := map[string]interface{}{
		"page_type":     a.PageType,
		"eventCategory": a.Category,
		"eventAction":   a.Action,
		"eventLabel":    a.Label,
	}
	for k, v := range a.Extras {
		if _, taken := props[k]; !taken {
			props[k] = v
		}
	}
	return props
}
