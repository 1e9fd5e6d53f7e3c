package service

import (
	"strings"

	"ghid/internal/utils"
)

// Static query tables. These are configuration, already stored in
// normalized (lowercase, diacritic-free) form so they can be compared
// against normalized input directly.

// locationKeywords marks a query as a location request when any entry
// is a substring of the normalized text.
var locationKeywords = []string{
	"restaurant",
	"pizza",
	"pizzerie",
	"cafenea",
	"cafea",
	"mancare",
	"mananc",
	"bistro",
	"berarie",
	"club",
	"bar",
	"pub",
	"muzeu",
	"galerie",
	"parc",
	"plimbare",
	"gradina",
	"teatru",
	"ceai",
	"desert",
	"prajitur",
}

// smallTalkPhrases marks a query as chit-chat when it contains no
// location keyword but does contain one of these.
var smallTalkPhrases = []string{
	"salut",
	"buna",
	"hello",
	"hey",
	"neata",
	"ce mai faci",
	"ce faci",
	"multumesc",
	"mersi",
	"la revedere",
	"pa pa",
	"noapte buna",
	"super",
	"ok",
}

// categorySynonyms expands a matched keyword into the terms checked
// against a record's category field. A keyword with no entry expands
// to itself.
var categorySynonyms = map[string][]string{
	"cafea":    {"cafenea", "cafe", "coffee", "ceainarie"},
	"cafenea":  {"cafenea", "cafe", "coffee"},
	"pizza":    {"pizzerie", "pizza", "italian"},
	"mancare":  {"restaurant", "bistro", "pizzerie", "berarie", "crama"},
	"mananc":   {"restaurant", "bistro", "pizzerie", "berarie", "crama"},
	"club":     {"club", "bar", "pub"},
	"bar":      {"bar", "pub", "club", "berarie"},
	"plimbare": {"parc", "gradina"},
	"parc":     {"parc", "gradina"},
	"muzeu":    {"muzeu", "galerie", "monument"},
	"ceai":     {"ceainarie", "cafenea"},
	"desert":   {"cafenea", "cofetarie"},
	"prajitur": {"cafenea", "cofetarie"},
}

// ContainsLocationKeyword reports whether the normalized text mentions
// any location keyword.
func ContainsLocationKeyword(normalized string) bool {
	return len(matchedKeywords(normalized)) > 0
}

// ContainsSmallTalk reports whether the normalized text contains a
// known small-talk phrase.
func ContainsSmallTalk(normalized string) bool {
	for _, phrase := range smallTalkPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// matchedKeywords returns every location keyword contained in the
// normalized text, in table order.
func matchedKeywords(normalized string) []string {
	var matched []string
	for _, kw := range locationKeywords {
		if strings.Contains(normalized, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// expandKeywords maps a keyword phrase to the deduplicated set of
// category search terms, via the synonym table. The phrase is
// normalized before matching; an unmatched phrase yields nil.
func expandKeywords(phrase string) []string {
	normalized := utils.Normalize(phrase)
	keywords := matchedKeywords(normalized)
	if len(keywords) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	terms := make([]string, 0, len(keywords))
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, kw := range keywords {
		expansions, ok := categorySynonyms[kw]
		if !ok {
			add(kw)
			continue
		}
		for _, term := range expansions {
			add(term)
		}
	}
	return terms
}
