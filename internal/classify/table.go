// Package classify maps classification codes and type flags onto the
// five-category reporting model using prefix rule tables.
package classify

import (
	"sort"
	"strings"
)

// Table is an immutable prefix rule table. Keys are normalized
// classification-code prefixes; values are groups such as
// "Assets:Ativo-Circulante".
type Table struct {
	rules    map[string]string
	prefixes []string // longest first
}

// NewTable builds a table from prefix → group rules. Keys are normalized
// with NormalizeCode; empty keys are ignored.
func NewTable(rules map[string]string) *Table {
	t := &Table{rules: make(map[string]string, len(rules))}
	for k, v := range rules {
		key := NormalizeCode(k)
		if key == "" {
			continue
		}
		t.rules[key] = strings.TrimSpace(v)
	}
	t.prefixes = make([]string, 0, len(t.rules))
	for k := range t.rules {
		t.prefixes = append(t.prefixes, k)
	}
	sort.Slice(t.prefixes, func(i, j int) bool {
		if len(t.prefixes[i]) != len(t.prefixes[j]) {
			return len(t.prefixes[i]) > len(t.prefixes[j])
		}
		return t.prefixes[i] < t.prefixes[j]
	})
	return t
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Rules returns a copy of the rule map.
func (t *Table) Rules() map[string]string {
	out := make(map[string]string, t.Len())
	if t == nil {
		return out
	}
	for k, v := range t.rules {
		out[k] = v
	}
	return out
}

// Lookup returns the group bound to the longest rule prefix of code.
func (t *Table) Lookup(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	norm := NormalizeCode(code)
	if norm == "" {
		return "", false
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(norm, p) {
			return t.rules[p], true
		}
	}
	return "", false
}

// NormalizeCode trims a classification code and strips separator
// characters so "1.1.05" and "1105" compare equal.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', '/', '_', ' ', '\t':
			return -1
		}
		return r
	}, code)
}
