// Package tagmatch assigns interest tags to articles by keyword.
package tagmatch

import (
	"strings"

	"rss-digest/pkg/domain"
)

// Match returns the active tags with at least one keyword occurring in the
// article's title or description.
//
// Matching is a case-insensitive substring test, not a word match: the keyword
// "react" matches "ReactJS" and "ai" matches "said". Results keep the order of
// tags and contain each tag once.
func Match(title string, description *string, tags []domain.Tag) []domain.MatchedTag {
	desc := ""
	if description != nil {
		desc = *description
	}

	haystack := strings.ToLower(title + " " + desc)
	if strings.TrimSpace(haystack) == "" {
		return []domain.MatchedTag{}
	}

	matched := make([]domain.MatchedTag, 0)
	for _, tag := range tags {
		if !tag.IsActive {
			continue
		}
		if hasKeyword(haystack, tag.Keywords) {
			matched = append(matched, domain.MatchedTag{ID: tag.ID, Name: tag.Name})
		}
	}

	return matched
}

func hasKeyword(haystack string, keywords []domain.Keyword) bool {
	for _, kw := range keywords {
		// an empty keyword would match every article
		if kw.Keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw.Keyword)) {
			return true
		}
	}
	return false
}
