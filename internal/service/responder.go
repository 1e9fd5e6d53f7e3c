package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/utils"
)

// TextGenerator is the boundary to the hosted generation API
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// BotResponse is the generated reply for one turn together with the
// locations to attach as recommendation cards.
type BotResponse struct {
	Text      string
	Locations []model.Location
}

// Responder builds the generation prompt from the resolved context and
// the locally-found candidates, submits it, and converts every failure
// mode into user-visible chat text. It never returns an error and never
// re-derives locations from the generated text: the reply carries the
// local search engine's candidates verbatim.
type Responder struct {
	client             TextGenerator
	catalog            *catalog.Catalog
	promptCandidates   int
	fallbackSample     int
	maxRecommendations int
}

// NewResponder creates a new response generator
func NewResponder(client TextGenerator, cat *catalog.Catalog, promptCandidates, fallbackSample, maxRecommendations int) *Responder {
	if promptCandidates <= 0 {
		promptCandidates = 5
	}
	if fallbackSample <= 0 {
		fallbackSample = 10
	}
	if maxRecommendations <= 0 {
		maxRecommendations = 3
	}
	return &Responder{
		client:             client,
		catalog:            cat,
		promptCandidates:   promptCandidates,
		fallbackSample:     fallbackSample,
		maxRecommendations: maxRecommendations,
	}
}

// Generate produces the bot reply for one resolved turn
func (r *Responder) Generate(ctx context.Context, res Resolution, candidates []model.Location) BotResponse {
	// Missing credential is terminal for the turn: no network call,
	// deterministic text, synchronous return.
	if r.client == nil || !r.client.IsEnabled() {
		return BotResponse{
			Text: "Eroare: Cheia API nu a fost găsită. Setează variabila GEMINI_API_KEY și repornește serverul.",
		}
	}

	prompt := r.buildPrompt(res, candidates)

	text, err := r.client.GenerateContent(ctx, prompt)
	if err != nil {
		return BotResponse{Text: errorText(err)}
	}

	return BotResponse{
		Text:      text,
		Locations: r.recommendations(res, candidates),
	}
}

// buildPrompt assembles the single-message generation prompt: role
// framing, the resolved geographic focus, the user's request, and a
// compact serialization of the grounding data.
func (r *Responder) buildPrompt(res Resolution, candidates []model.Location) string {
	var b strings.Builder

	b.WriteString("Ești un asistent AI prietenos, dar concis, specializat în recomandări de locații.\n")
	b.WriteString("Obiectivul tău este să oferi cea mai bună experiență de conversație.\n")
	b.WriteString("1. Dacă cererea NU este despre recomandări de locuri (ex: \"salut\", \"ce mai faci\", \"mersi\"), răspunde natural și scurt, fără a oferi o listă de locații.\n")
	b.WriteString("2. Dacă cererea este despre locuri, oferă o recomandare bazată DOAR pe datele furnizate și evită frazele generice de început ca \"Desigur\" sau \"Iată recomandările\". Începe răspunsul direct și firesc.\n")
	if res.PromptCity != "" {
		fmt.Fprintf(&b, "3. Contextul implicit determinat pentru localizare este: %s. Prioritizează locațiile din acest oraș.\n", res.PromptCity)
	}
	b.WriteString("4. Structura recomandării: nume complet, categoria, rating.\n")

	fmt.Fprintf(&b, " Cererea utilizatorului: %q.", res.Query)
	fmt.Fprintf(&b, " Folosește următoarele date: [%s]", r.serializeCandidates(candidates))

	return b.String()
}

// serializeCandidates renders up to promptCandidates records as compact
// name/category/rating/city tuples, rating-descending. When the local
// search produced nothing (small talk, missing city), the top-rated
// slice of the catalog stands in so the model still has grounding data.
func (r *Responder) serializeCandidates(candidates []model.Location) string {
	sample := candidates
	if len(sample) == 0 {
		sample = r.catalog.TopRated(r.fallbackSample)
	} else {
		sample = append([]model.Location(nil), sample...)
		sort.SliceStable(sample, func(i, j int) bool {
			return sample[i].Rating > sample[j].Rating
		})
		if len(sample) > r.promptCandidates {
			sample = sample[:r.promptCandidates]
		}
	}

	parts := make([]string, 0, len(sample))
	for _, loc := range sample {
		parts = append(parts, fmt.Sprintf("{name: %q, category: %q, rating: %g, city: %q}",
			loc.Name, utils.SimplifyCategory(loc.Category), loc.Rating, loc.City()))
	}
	return strings.Join(parts, "; ")
}

// recommendations picks the locations attached to the reply: the
// caller-supplied candidates, capped. Chit-chat and unsearchable turns
// attach nothing.
func (r *Responder) recommendations(res Resolution, candidates []model.Location) []model.Location {
	if res.ChitChat || res.SearchIntent == "" || len(candidates) == 0 {
		return nil
	}
	if len(candidates) > r.maxRecommendations {
		candidates = candidates[:r.maxRecommendations]
	}
	return candidates
}

// errorText maps the generation error taxonomy onto user-visible chat
// text. Nothing propagates past this point.
func errorText(err error) string {
	var statusErr *APIStatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Eroare API (%d): %s. Verifică cheia API și permisiunile proiectului.",
			statusErr.StatusCode, statusErr.Message)
	}

	var emptyErr *EmptyGenerationError
	if errors.As(err, &emptyErr) {
		reason := "Răspuns gol. Conținutul ar fi putut fi blocat din motive de siguranță sau problemă de generare."
		if len(emptyErr.SafetyRatings) > 0 {
			ratings, _ := json.Marshal(emptyErr.SafetyRatings)
			reason += fmt.Sprintf(" (Safety: %s)", ratings)
		}
		return fmt.Sprintf("Nu am putut genera un răspuns valid. Motiv: %s", reason)
	}

	return fmt.Sprintf("Ne pare rău, a apărut o eroare la rețea. Mesaj: %v", err)
}
