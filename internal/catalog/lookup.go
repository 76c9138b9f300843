package catalog

import (
	"sort"

	"github.com/CDLUC3/rslv-go/internal/model"
	"github.com/CDLUC3/rslv-go/internal/splitter"
)

// maxSynonymDepth bounds synonym-chain traversal; exceeding it is treated
// as a cycle.
const maxSynonymDepth = 8

// Get resolves the best-matching PidDefinition for (scheme, prefix, value)
// using longest-value-prefix matching, falling back to the prefix-exact and
// then scheme-exact catch-all rows. When resolveSynonym is true and the
// match has a non-nil SynonymFor, the chain is followed (bounded, cycle-safe)
// and the terminal definition is returned.
func (c *Catalog) Get(scheme, prefix, value string, resolveSynonym bool) (*model.PidDefinition, error) {
	key := lookupCacheKey(scheme, prefix, value, resolveSynonym)
	if cached, ok := c.lookupCache.Get(key); ok {
		return cached, nil
	}

	def, err := c.get(scheme, prefix, value, resolveSynonym, make(map[string]bool), 0)
	if err != nil {
		return nil, err
	}
	c.lookupCache.Set(key, def)
	return def, nil
}

func (c *Catalog) get(scheme, prefix, value string, resolveSynonym bool, visited map[string]bool, depth int) (*model.PidDefinition, error) {
	if depth > maxSynonymDepth {
		return nil, ErrCycle
	}

	def, err := c.matchOne(scheme, prefix, value)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, nil
	}
	if !resolveSynonym || def.SynonymFor == nil {
		return def, nil
	}

	if visited[def.Uniq] {
		return nil, ErrCycle
	}
	visited[def.Uniq] = true

	syn := splitter.Split(*def.SynonymFor)
	nextScheme := syn.Scheme
	if nextScheme == "" {
		nextScheme = scheme
	}
	nextPrefix := prefix
	if syn.Prefix != "" {
		nextPrefix = syn.Prefix
	}
	nextValue := value
	if syn.HasValue {
		nextValue = syn.Value
	}

	return c.get(nextScheme, nextPrefix, nextValue, resolveSynonym, visited, depth+1)
}

// matchOne implements the three-tier, non-synonym-following match described
// by Get: longest-value-prefix under (scheme, prefix), then the
// (scheme, prefix, "") catch-all, then the (scheme, "", "") catch-all.
func (c *Catalog) matchOne(scheme, prefix, value string) (*model.PidDefinition, error) {
	maxLen, err := c.maxValueLength()
	if err != nil {
		return nil, err
	}

	rows, err := c.store.candidatesForLookup(scheme, prefix)
	if err != nil {
		return nil, err
	}

	var samePrefix []model.PidDefinition
	var wildcard []model.PidDefinition
	for _, r := range rows {
		if r.Prefix == prefix {
			samePrefix = append(samePrefix, r)
		} else {
			wildcard = append(wildcard, r)
		}
	}

	if value != "" {
		if best := longestValuePrefixMatch(samePrefix, value, maxLen); best != nil {
			return best, nil
		}
	}
	for _, r := range samePrefix {
		if r.Value == "" {
			def := r
			return &def, nil
		}
	}
	if prefix != "" {
		for _, r := range wildcard {
			if r.Prefix == "" && r.Value == "" {
				def := r
				return &def, nil
			}
		}
	}
	return nil, nil
}

// longestValuePrefixMatch selects, among rows sharing (scheme, prefix), the
// row whose non-empty Value is a prefix of value, preferring the longest
// such Value (length bounded by maxLen) and breaking ties lexicographically
// ascending on Value.
//
// spec.md's candidate-prefix description (substrings of the incoming value
// of length >= 2) would exclude a one-character registered Value like
// "ark:99999/9" from ever matching, which contradicts spec.md's own worked
// scenario where such a shoulder wins against a longer incoming value
// ("ark:99999/912345/foo" must match "9", not fall through to the bare
// "ark:99999" catch-all). The worked example is the binding oracle, so this
// only enforces the upper bound (maxLen), not a length-2 floor.
func longestValuePrefixMatch(rows []model.PidDefinition, value string, maxLen int) *model.PidDefinition {
	upper := len(value)
	if maxLen > 0 && maxLen < upper {
		upper = maxLen
	}

	var candidates []model.PidDefinition
	for _, r := range rows {
		if r.Value == "" {
			continue
		}
		l := len(r.Value)
		if l > upper {
			continue
		}
		if len(value) >= l && value[:l] == r.Value {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i].Value) != len(candidates[j].Value) {
			return len(candidates[i].Value) > len(candidates[j].Value)
		}
		return candidates[i].Value < candidates[j].Value
	})
	return &candidates[0]
}
