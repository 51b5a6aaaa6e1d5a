// File: internal/event/classify.go
package event

import (
	"strings"
	"unicode"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// Classify resolves the event type for a decoded event. An explicit "event"
// key at the top level of the raw payload always wins, verbatim. Otherwise
// the captured event/eventType fields are consulted, and only when those are
// empty does the rule table infer a type from category and action.
func Classify(root Object, fields schemas.Fields) schemas.EventType {
	if v, ok := root.Get("event"); ok {
		return schemas.FromLabel(schemas.Stringify(v))
	}
	if label := fields.String("event"); label != "" {
		return schemas.FromLabel(label)
	}
	if label := fields.String("eventType"); label != "" {
		return schemas.FromLabel(label)
	}
	return infer(fields)
}

// infer maps category/action patterns onto event types. Rule order matters:
// an action containing "view" is classified before the mini-cart category
// rule gets a look, so "mini-cart" + "subtotal-view" comes out as
// Element Viewed rather than Mini-Cart Viewed.
func infer(fields schemas.Fields) schemas.EventType {
	category := strings.ToLower(fields.String("eventCategory"))
	action := strings.ToLower(fields.String("eventAction"))

	if fields.Has("event") {
		explicit := strings.ToLower(fields.String("event"))
		if explicit == "tab" {
			return schemas.TabNavigation
		}
		return schemas.FromLabel(titleCase(explicit))
	}

	switch {
	case strings.Contains(action, "click"):
		for _, navTerm := range []string{"nav", "header", "menu", "mini-cart"} {
			if strings.Contains(category, navTerm) {
				return schemas.NavigationClicked
			}
		}
		if strings.Contains(category, "button") || strings.Contains(category, "btn") {
			return schemas.ButtonClicked
		}
		return schemas.ElementClicked

	case strings.Contains(action, "view"):
		return schemas.ElementViewed

	case strings.Contains(action, "submit") || strings.Contains(category, "form"):
		return schemas.FormSubmitted

	case strings.Contains(action, "hover") || strings.Contains(action, "mouseover"):
		return schemas.ElementHovered

	case category == "mini-cart":
		// Reached only for actions with no click/view flavor at all.
		return schemas.MiniCartAction

	case category != "":
		return schemas.Custom("Custom Action: " + category)

	case action != "":
		return schemas.Custom("Custom Action: " + action)

	default:
		return schemas.GenericAction
	}
}

// BuildIntent decodes and normalizes a raw event into a classified intent.
// The four standard analytics fields are always populated, possibly empty;
// every other captured scalar rides along in Extras.
func BuildIntent(root Object) schemas.ActionIntent {
	fields := ExtractFields(root)
	eventType := Classify(root, fields)

	intent := schemas.ActionIntent{
		EventType: eventType,
		PageType:  fields.String("page_type"),
		Category:  fields.String("eventCategory"),
		Action:    fields.String("eventAction"),
		Label:     fields.String("eventLabel"),
	}

	for k, v := range fields {
		switch k {
		case "event", "eventType", "page_type", "eventCategory", "eventAction", "eventLabel":
		default:
			if intent.Extras == nil {
				intent.Extras = schemas.Fields{}
			}
			intent.Extras[k] = v
		}
	}
	return intent
}

// titleCase capitalizes the first letter of every word, lowercasing the
// rest, with word boundaries at any non-letter.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
