// Package splitter decomposes an identifier string into scheme, prefix,
// and value segments by a fixed two-cut grammar: everything before the
// first ':' is the scheme, everything after is content, and content is
// further cut on the first '/' into prefix and value.
package splitter

import (
	"strings"

	"github.com/CDLUC3/rslv-go/internal/model"
)

// leadingStripSet is the set of characters stripped from the left of
// Content after the scheme cut.
const leadingStripSet = " /:"

// Split decomposes s into a model.ParsedIdentifier. It is a pure function:
// it never fails, returning an increasingly empty ParsedIdentifier for
// increasingly degenerate input.
func Split(s string) model.ParsedIdentifier {
	pid := strings.TrimSpace(s)
	parsed := model.ParsedIdentifier{PID: pid}

	schemePart, rest, hasColon := strings.Cut(pid, ":")
	if !hasColon {
		return parsed
	}
	parsed.Scheme = strings.ToLower(strings.TrimSpace(schemePart))

	content := strings.TrimLeft(rest, leadingStripSet)
	content = strings.TrimSpace(content)
	parsed.Content = content
	parsed.HasContent = true

	prefixPart, valuePart, hasSlash := strings.Cut(content, "/")
	parsed.Prefix = strings.TrimSpace(prefixPart)
	parsed.HasPrefix = true
	if !hasSlash {
		return parsed
	}

	value := strings.TrimPrefix(valuePart, "/")
	value = strings.TrimSpace(value)
	parsed.Value = value
	parsed.HasValue = true
	return parsed
}
