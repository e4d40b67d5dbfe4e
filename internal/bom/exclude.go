package bom

import (
	"strings"
)

// KeywordFilter excludes components whose name contains any of a set of
// keywords, case-insensitive. The vocabulary is supplied by the caller
// (packaging and labeling noise, typically).
type KeywordFilter struct {
	keywords []string
}

func NewKeywordFilter(keywords []string) *KeywordFilter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &KeywordFilter{keywords: lowered}
}

// Excluded reports whether name matches the exclusion vocabulary.
func (f *KeywordFilter) Excluded(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
