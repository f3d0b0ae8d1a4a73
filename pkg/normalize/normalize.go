// Package normalize holds the pure string transformations the ingestion
// engine applies to scraped text before anything touches the database.
// Everything here is stateless and never returns an error: unparseable input
// degrades to a zero value while the original text is preserved for display.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// CollapseSpace trims s and collapses internal whitespace runs to single
// spaces.
func CollapseSpace(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ArtistKey converts a raw artist name into the key used for deduplication:
// lowercased, diacritics folded, whitespace collapsed. Empty or
// whitespace-only input yields "" — the "no artist" sentinel, for which the
// caller must create no association.
func ArtistKey(raw string) string {
	s := CollapseSpace(raw)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldChain, s); err == nil {
		s = folded
	}
	return strings.ToLower(s)
}

// SplitArtists splits a comma-separated artist string into individual raw
// names, order preserved. Parenthesized spans such as life dates
// "(1757–1827)" are dropped, segments are trimmed, and empty segments are
// discarded.
func SplitArtists(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, seg := range strings.Split(raw, ",") {
		seg = CollapseSpace(parenRe.ReplaceAllString(seg, ""))
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// NormalizeURL trims a URL and drops a single trailing slash. Empty input
// stays empty.
func NormalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if len(u) > 1 && strings.HasSuffix(u, "/") {
		u = u[:len(u)-1]
	}
	return u
}

// SplitLocation splits a free-text "museum, city, country" string. With three
// or more segments the first is the museum, the last the country, and the
// middle joins into the city. Two segments give museum and city; one gives
// only the museum. Missing positions come back "".
func SplitLocation(raw string) (museum, city, country string) {
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = CollapseSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
	case 1:
		museum = parts[0]
	case 2:
		museum, city = parts[0], parts[1]
	default:
		museum = parts[0]
		country = parts[len(parts)-1]
		city = strings.Join(parts[1:len(parts)-1], ", ")
	}
	return museum, city, country
}
