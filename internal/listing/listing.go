// ABOUTME: Client-side search and sort for record lists
// ABOUTME: Matching ignores case and French accents ("ecole" finds "École")

package listing

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Match reports whether query occurs in any of fields. An empty query matches.
func Match(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the items whose fields contain query. fields selects the
// searchable text of an item. The input slice is not modified.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	if strings.TrimSpace(query) == "" {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Match(query, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}

// SortBy returns a stably sorted copy of items ordered by key
func SortBy[T any, K cmp.Ordered](items []T, key func(T) K, desc bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// ByText is a SortBy key helper comparing folded strings
func ByText[T any](field func(T) string) func(T) string {
	return func(t T) string { return Fold(field(t)) }
}
