package resolver

import (
	"strings"

	"github.com/CDLUC3/rslv-go/internal/model"
)

// applyArkHyphenPolicy strips '-' from parts.Content/Value/Suffix when the
// scheme is "ark" and the matched definition hasn't opted out via a
// "strip_hyphens": false property. ARK identifiers are conventionally
// hyphenated for readability (e.g. "99999/fk4-abc-def") with the hyphens
// carrying no identity meaning, so the resolver drops them before
// templating the Location and introspection result. The strip never
// touches text at or after a part's first '?', since a trailing query-like
// fragment may carry hyphens the splitter never treated as part of the PID.
func applyArkHyphenPolicy(parts *model.ParsedIdentifier, def *model.PidDefinition) {
	if parts.Scheme != "ark" || hyphenStrippingDisabled(def) {
		return
	}
	parts.Content = stripHyphensPreservingQuery(parts.Content)
	parts.Value = stripHyphensPreservingQuery(parts.Value)
	parts.Suffix = stripHyphensPreservingQuery(parts.Suffix)
}

func hyphenStrippingDisabled(def *model.PidDefinition) bool {
	if def == nil || def.Properties == nil {
		return false
	}
	v, ok := def.Properties["strip_hyphens"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && !b
}

func stripHyphensPreservingQuery(s string) string {
	head, tail, found := strings.Cut(s, "?")
	head = strings.ReplaceAll(head, "-", "")
	if !found {
		return head
	}
	return head + "?" + tail
}
