package urls

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query keys dropped during normalization.
// Any key starting with trackingPrefix is dropped as well.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
}

const trackingPrefix = "utm_"

// NormalizeURL returns the canonical form of an article link used for deduplication.
//
// Modifications applied:
//   - Removes tracking parameters (utm_*, fbclid, gclid, ref)
//   - Sorts the remaining query parameters by key
//   - Removes trailing slashes (except for root path "/")
//
// Scheme, host and fragment are left as they are. Input that does not parse as an
// absolute URL is returned unchanged.
//
// Example:
//
//	input:  "https://example.com/a/?utm_source=x&id=2"
//	output: "https://example.com/a?id=2"
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() {
		return rawURL
	}

	if parsed.RawQuery != "" {
		parsed.RawQuery = canonicalQuery(parsed.RawQuery)
	}
	parsed.ForceQuery = false

	parsed.Path = trimTrailingSlash(parsed.Path)
	if parsed.RawPath != "" {
		parsed.RawPath = trimTrailingSlash(parsed.RawPath)
	}

	return parsed.String()
}

type queryPair struct {
	key, value string
}

// canonicalQuery drops tracking keys and re-encodes the rest sorted by key.
// Values for a repeated key keep their original relative order. Pairs are split
// on "&" only, so ";" stays part of a value, and malformed escapes are kept as text.
func canonicalQuery(rawQuery string) string {
	var pairs []queryPair
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = unescapeQueryPart(key)
		if isTrackingParam(key) {
			continue
		}
		pairs = append(pairs, queryPair{key: key, value: unescapeQueryPart(value)})
	}
	if len(pairs) == 0 {
		return ""
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// unescapeQueryPart decodes form encoding, leaving any "%" that does not start
// a valid escape as a literal percent sign.
func unescapeQueryPart(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isTrackingParam(key string) bool {
	return trackingParams[key] || strings.HasPrefix(key, trackingPrefix)
}

// trimTrailingSlash removes trailing slashes but never reduces a path to nothing.
func trimTrailingSlash(path string) string {
	if len(path) <= 1 || !strings.HasSuffix(path, "/") {
		return path
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
