// File: internal/event/normalize.go
package event

import (
	"strings"

	"github.com/xkilldash9x/replay-cli/api/schemas"
)

// fieldAliases maps lowercased wire-format key variations onto the canonical
// field vocabulary. Keys missing from this table are ignored entirely.
var fieldAliases = map[string]string{
	// Page type variations
	"page_type": "page_type",
	"pagetype":  "page_type",
	"page-type": "page_type",
	"page":      "page_type",
	"type":      "page_type",

	// Event variations
	"event":      "event",
	"eventtype":  "eventType",
	"event_type": "eventType",
	"event-type": "eventType",

	// Category variations
	"eventcategory":  "eventCategory",
	"event_category": "eventCategory",
	"event-category": "eventCategory",
	"category":       "eventCategory",

	// Action variations
	"eventaction":  "eventAction",
	"event_action": "eventAction",
	"event-action": "eventAction",
	"action":       "eventAction",

	// Label variations
	"eventlabel":  "eventLabel",
	"event_label": "eventLabel",
	"event-label": "eventLabel",
	"label":       "eventLabel",
	"name":        "eventLabel",

	// Other common fields
	"timestamp":  "timestamp",
	"time":       "timestamp",
	"userid":     "userId",
	"user_id":    "userId",
	"sessionid":  "sessionId",
	"session_id": "sessionId",
	"url":        "url",
	"path":       "path",
	"value":      "value",
}

// CanonicalFieldName maps a raw key onto its canonical name, or "" when the
// key carries nothing the replay engine cares about.
func CanonicalFieldName(name string) string {
	return fieldAliases[strings.ToLower(name)]
}

// ExtractFields walks the whole event tree in document order and collects
// every recognized field into a flat map. The first occurrence of a
// canonical name wins; later duplicates anywhere in the tree are ignored.
func ExtractFields(root interface{}) schemas.Fields {
	fields := schemas.Fields{}
	collectFields(root, fields)
	return fields
}

func collectFields(v interface{}, out schemas.Fields) {
	switch node := v.(type) {
	case Object:
		for _, m := range node {
			canonical := CanonicalFieldName(m.Key)
			if canonical != "" {
				if _, seen := out[canonical]; !seen {
					if schemas.IsScalar(m.Value) {
						out[canonical] = m.Value
					} else if inner, ok := m.Value.(Object); ok && len(inner) == 1 {
						// A single-member wrapper object counts as the value
						// itself, e.g. {"label": {"text": "mini-cart"}}.
						if schemas.IsScalar(inner[0].Value) {
							out[canonical] = inner[0].Value
						}
					}
				}
			}
			collectFields(m.Value, out)
		}
	case Array:
		for _, item := range node {
			collectFields(item, out)
		}
	}
}

// ExtractPageType searches the event tree for a page type. At each object it
// checks that object's own keys before descending, so a shallow page_type
// beats a deeper one. Returns "" when no page type exists anywhere.
func ExtractPageType(v interface{}) string {
	switch node := v.(type) {
	case Object:
		for _, m := range node {
			switch strings.ToLower(m.Key) {
			case "page_type", "pagetype", "page-type":
				return schemas.Stringify(m.Value)
			}
		}
		for _, m := range node {
			if result := ExtractPageType(m.Value); result != "" {
				return result
			}
		}
	case Array:
		for _, item := range node {
			if result := ExtractPageType(item); result != "" {
				return result
			}
		}
	}
	return ""
}
