// Package resolver implements the identifier resolution state machine:
// parse → catalog lookup → suffix recovery → template expansion → method
// aware status adjustment → redirect vs. introspection decision.
package resolver

import (
	"errors"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/CDLUC3/rslv-go/internal/catalog"
	"github.com/CDLUC3/rslv-go/internal/model"
	"github.com/CDLUC3/rslv-go/internal/splitter"
	"github.com/CDLUC3/rslv-go/internal/template"
)

// ErrUnsafeTarget is returned when an expanded target contains characters
// that are not valid in an HTTP header field value, which would otherwise
// let an attacker-controlled value/suffix substitution inject a CRLF or
// control character into the Location response header.
var ErrUnsafeTarget = errors.New("resolver: expanded target is not a valid header value")

const defaultTargetTemplate = "/.info/${pid}"

// Match pairs a parsed identifier with its catalog match, if any.
type Match struct {
	Parts      model.ParsedIdentifier
	Definition *model.PidDefinition
}

// Parse splits identifier and resolves it against cat. A synonym cycle is
// treated the same as "no match" (Match.Definition is nil, err is nil):
// callers shouldn't have to distinguish a broken synonym graph from an
// absent definition, both present to the client as not-found.
func Parse(identifier string, cat *catalog.Catalog, resolveSynonym bool) (Match, error) {
	parts := splitter.Split(identifier)
	def, err := cat.Get(parts.Scheme, parts.Prefix, parts.Value, resolveSynonym)
	if err != nil {
		if errors.Is(err, catalog.ErrCycle) {
			return Match{Parts: parts}, nil
		}
		return Match{Parts: parts}, err
	}
	if def == nil {
		return Match{Parts: parts}, nil
	}
	parts.Suffix = computeSuffix(identifier, parts, *def)
	applyArkHyphenPolicy(&parts, def)
	return Match{Parts: parts, Definition: def}, nil
}

// computeSuffix recovers the trailing portion of the original identifier
// beyond the fixed-length prefix/value of the matched definition. This is
// computed from the definition's own prefix/value, not the parsed
// identifier's: a longest-value-prefix match necessarily has a value
// shorter than or equal to the identifier's value, and the remainder
// becomes the suffix. A scheme-only definition (empty prefix and value)
// matches nothing of the content, so the whole content is the suffix.
func computeSuffix(pid string, parts model.ParsedIdentifier, def model.PidDefinition) string {
	if !parts.HasContent || parts.Content == "" {
		return ""
	}
	idx := strings.Index(pid, parts.Content)
	if idx < 0 {
		return ""
	}
	matchedLen := len(def.Prefix) + 1 + len(def.Value)
	if def.Prefix == "" && def.Value == "" {
		matchedLen = 0
	}
	pos := idx + matchedLen
	if pos > len(pid) {
		return ""
	}
	return pid[pos:]
}

// ExpandTarget expands a definition's Target template, falling back to
// "/.info/${pid}" when Target is unset (mirrors the legacy "route to
// introspection if no redirect target is registered" behavior).
func ExpandTarget(def *model.PidDefinition, parts map[string]string) (string, error) {
	tmpl := defaultTargetTemplate
	if def.Target != nil {
		tmpl = *def.Target
	}
	return template.Expand(tmpl, parts)
}

// ExpandCanonical expands a definition's Canonical template.
func ExpandCanonical(def *model.PidDefinition, parts map[string]string) (string, error) {
	tmpl := def.Canonical
	if tmpl == "" {
		tmpl = "${pid}"
	}
	return template.Expand(tmpl, parts)
}

// InfoResult is the outcome of introspecting an identifier: its parsed
// parts, the matched definition (nil if none), and the expanded templates.
// When Parts.Prefix or Parts.Value is empty, Prefixes/Values lists the
// catalog's known next-level keys so a client can browse, regardless of
// whether the identifier also matched a catch-all definition.
type InfoResult struct {
	Parts      model.ParsedIdentifier
	Definition *model.PidDefinition
	Target     string
	Canonical  string
	StatusCode int
	Prefixes   []string
	Values     []string
}

// Info introspects identifier without following synonym chains to a
// redirect decision: the returned definition is the one actually matched,
// even if it is itself a synonym pointer. method only affects StatusCode.
func Info(cat *catalog.Catalog, identifier, method string) (InfoResult, error) {
	m, err := Parse(identifier, cat, false)
	if err != nil {
		return InfoResult{Parts: m.Parts}, err
	}
	res := InfoResult{Parts: m.Parts}
	if err := fillBrowseLists(cat, &res); err != nil {
		return res, err
	}
	if m.Definition == nil {
		return res, nil
	}
	res.Definition = m.Definition
	partsMap := m.Parts.Parts()
	if res.Target, err = ExpandTarget(m.Definition, partsMap); err != nil {
		return res, err
	}
	if res.Canonical, err = ExpandCanonical(m.Definition, partsMap); err != nil {
		return res, err
	}
	res.StatusCode = AdjustStatusForMethod(method, m.Definition.HTTPCode)
	return res, nil
}

func fillBrowseLists(cat *catalog.Catalog, res *InfoResult) error {
	var err error
	switch {
	case res.Parts.Prefix == "":
		res.Prefixes, err = cat.ListPrefixes(res.Parts.Scheme)
	case res.Parts.Value == "":
		res.Values, err = cat.ListValues(res.Parts.Scheme, res.Parts.Prefix)
	}
	return err
}

// ResolveResult is the outcome of resolving identifier to a redirect
// target, following synonym chains. UseInfo is true when auto-introspection
// is enabled and the requested value is empty or equal to the matched
// definition's own value; Target, Canonical and StatusCode are then left
// unset, and callers should render an introspection response instead of a
// redirect, by calling Info with the same identifier.
type ResolveResult struct {
	Parts      model.ParsedIdentifier
	Definition *model.PidDefinition
	Target     string
	Canonical  string
	StatusCode int
	UseInfo    bool
}

// Resolve resolves identifier to a redirect target, following synonym
// chains. autoIntrospection enables the legacy shortcut where a request
// for a bare scheme/prefix (no value) or for the literal registered value
// itself is treated as an introspection request rather than a redirect.
func Resolve(cat *catalog.Catalog, identifier, method string, autoIntrospection bool) (ResolveResult, error) {
	m, err := Parse(identifier, cat, true)
	if err != nil {
		return ResolveResult{Parts: m.Parts}, err
	}
	res := ResolveResult{Parts: m.Parts}
	if m.Definition == nil {
		return res, nil
	}
	def := m.Definition
	res.Definition = def

	if autoIntrospection && (m.Parts.Value == "" || m.Parts.Value == def.Value) {
		res.UseInfo = true
		return res, nil
	}

	partsMap := m.Parts.Parts()
	if res.Target, err = ExpandTarget(def, partsMap); err != nil {
		return res, err
	}
	if !httpguts.ValidHeaderFieldValue(res.Target) {
		return res, ErrUnsafeTarget
	}
	if res.Canonical, err = ExpandCanonical(def, partsMap); err != nil {
		return res, err
	}
	res.StatusCode = AdjustStatusForMethod(method, def.HTTPCode)
	return res, nil
}

// AdjustStatusForMethod rewrites a 301/302 redirect status to its
// method-preserving 307/308 counterpart for non-idempotent request methods,
// per RFC 7231's guidance that a redirect must not silently change a
// POST/PUT/DELETE into a GET on the next hop.
func AdjustStatusForMethod(method string, code int) int {
	switch method {
	case "POST", "PUT", "DELETE":
		switch code {
		case 302:
			return 307
		case 301:
			return 308
		}
	}
	return code
}
