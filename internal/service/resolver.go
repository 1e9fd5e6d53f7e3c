package service

import (
	"fmt"
	"strings"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/utils"
)

// Resolution is the outcome of classifying one conversation turn. The
// resolver is pure: remembered state goes in through ConversationContext
// and comes back out through NewContext, nothing is mutated in place.
type Resolution struct {
	// Query is the text forwarded to the generation prompt. For most
	// turns it is the raw user text; for carried-over turns it is the
	// remembered intent combined with the new city, and for turns that
	// cannot be searched it is an instruction for the model.
	Query string

	// SearchIntent and SearchCity drive the local search engine for
	// this turn. An empty SearchIntent suppresses the search entirely.
	SearchIntent string
	SearchCity   string

	// PromptCity is the geographic focus embedded in the prompt. It may
	// be set even when SearchCity is empty (history or catalog
	// fallback) and never widens the local filter.
	PromptCity string

	// ChitChat marks a non-location turn
	ChitChat bool

	NewContext model.ConversationContext
}

// ContextResolver classifies user input against the known-city set and
// the location keyword table, carrying intent/city across turns.
type ContextResolver struct {
	catalog       *catalog.Catalog
	historyWindow int
}

// NewContextResolver creates a new context resolver
func NewContextResolver(cat *catalog.Catalog, historyWindow int) *ContextResolver {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &ContextResolver{
		catalog:       cat,
		historyWindow: historyWindow,
	}
}

// Resolve classifies one turn. Priority order matters: chit-chat is
// checked first, then the city/keyword combination; later cases are
// only reached when earlier ones don't match.
func (r *ContextResolver) Resolve(text string, convCtx model.ConversationContext, history []model.Message) Resolution {
	text = strings.TrimSpace(text)
	normalized := utils.Normalize(text)

	hasKeyword := ContainsLocationKeyword(normalized)

	// 1. Chit-chat: small talk with no location keyword clears the
	// remembered context for this turn.
	if !hasKeyword && ContainsSmallTalk(normalized) {
		return Resolution{
			Query:      text,
			ChitChat:   true,
			PromptCity: r.promptCity("", history),
			NewContext: model.ConversationContext{},
		}
	}

	// 2. City detection: first known city (sorted order) whose
	// normalized form is a substring of the query wins.
	city := r.detectCity(normalized)

	// 3+4. Combine the two flags with the remembered context.
	var res Resolution
	switch {
	case city != "" && hasKeyword:
		// Full query
		res = Resolution{
			Query:        text,
			SearchIntent: text,
			SearchCity:   city,
			NewContext:   model.ConversationContext{LastIntent: text, LastCity: city},
		}

	case city != "":
		if convCtx.LastIntent != "" {
			// City switch: rerun the remembered intent in the new city
			res = Resolution{
				Query:        fmt.Sprintf("%s în %s", convCtx.LastIntent, city),
				SearchIntent: convCtx.LastIntent,
				SearchCity:   city,
				NewContext:   model.ConversationContext{LastIntent: convCtx.LastIntent, LastCity: city},
			}
		} else {
			// Bare city mention with nothing to rerun
			res = Resolution{
				Query:      text,
				SearchCity: city,
				NewContext: model.ConversationContext{LastCity: city},
			}
		}

	case hasKeyword:
		if convCtx.LastCity != "" {
			// New keyword in the remembered city
			res = Resolution{
				Query:        text,
				SearchIntent: text,
				SearchCity:   convCtx.LastCity,
				NewContext:   model.ConversationContext{LastIntent: text, LastCity: convCtx.LastCity},
			}
		} else {
			// No city known yet: remember the intent, ask for a city,
			// and skip the local search this turn.
			res = Resolution{
				Query:      fmt.Sprintf("Utilizatorul a cerut: %q, dar nu a precizat orașul. Roagă-l politicos să specifice orașul.", text),
				NewContext: model.ConversationContext{LastIntent: text},
			}
		}

	default:
		// Follow-up: reuse the remembered intent and city as-is
		res = Resolution{
			Query:        text,
			SearchIntent: convCtx.LastIntent,
			SearchCity:   convCtx.LastCity,
			NewContext:   convCtx,
		}
	}

	res.PromptCity = r.promptCity(res.SearchCity, history)
	return res
}

// detectCity scans the known-city set in sorted order and returns the
// first city whose normalized name appears in the normalized query.
func (r *ContextResolver) detectCity(normalized string) string {
	for _, city := range r.catalog.Cities() {
		if strings.Contains(normalized, utils.Normalize(city)) {
			return city
		}
	}
	return ""
}

// promptCity picks the geographic focus for the generation prompt:
// the resolved search city, else the most recent city visible in the
// history window, else the city of the top-rated catalog record.
func (r *ContextResolver) promptCity(searchCity string, history []model.Message) string {
	if searchCity != "" {
		return searchCity
	}
	if city := r.historicalCity(history); city != "" {
		return city
	}
	return r.catalog.DefaultCity()
}

// historicalCity scans the newest-first history window for a city the
// user mentioned, or failing that, the city of the first location in a
// bot recommendation.
func (r *ContextResolver) historicalCity(history []model.Message) string {
	window := history
	if len(window) > r.historyWindow {
		window = window[:r.historyWindow]
	}

	for i := range window {
		msg := &window[i]

		if msg.Sender == model.SenderUser {
			if city := r.detectCity(utils.Normalize(msg.Text)); city != "" {
				return city
			}
		}

		if msg.Sender == model.SenderBot && len(msg.RecommendedLocations) > 0 {
			return msg.RecommendedLocations[0].City()
		}
	}
	return ""
}
