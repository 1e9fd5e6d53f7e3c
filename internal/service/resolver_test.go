package service

import (
	"testing"

	"ghid/internal/catalog"
	"ghid/internal/model"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]model.Location{
		{Name: "Cafe Central", Address: "Str. X, Cluj-Napoca", Category: "cafenea", Rating: 4.7},
		{Name: "Pizzeria Toscana", Address: "Piața Unirii 12, Cluj-Napoca", Category: "pizzerie / restaurant italian", Rating: 4.5},
		{Name: "Cafe La Rotonda", Address: "Bd. Revoluției 3, Timișoara", Category: "cafenea / ceainărie", Rating: 4.4},
		{Name: "Pizzeria Incontro", Address: "Str. Mercy 2, Timișoara", Category: "pizzerie", Rating: 4.6},
		{Name: "Origo Coffee Shop", Address: "Str. Lipscani 9, București", Category: "cafenea de specialitate", Rating: 4.8},
		{Name: "Control Club", Address: "Str. Mille 4, București", Category: "club", Rating: 4.3},
	})
	if err != nil {
		t.Fatalf("failed to build test catalog: %v", err)
	}
	return cat
}

func TestResolve_FullQuery(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("vreau o cafea in Cluj-Napoca", model.ConversationContext{}, nil)

	if res.ChitChat {
		t.Fatal("full query classified as chit-chat")
	}
	if res.SearchCity != "Cluj-Napoca" {
		t.Errorf("SearchCity = %q, want Cluj-Napoca", res.SearchCity)
	}
	if res.SearchIntent != "vreau o cafea in Cluj-Napoca" {
		t.Errorf("SearchIntent = %q, want raw text", res.SearchIntent)
	}
	if res.NewContext.LastIntent != "vreau o cafea in Cluj-Napoca" || res.NewContext.LastCity != "Cluj-Napoca" {
		t.Errorf("NewContext = %+v, want both remembered", res.NewContext)
	}
	if res.PromptCity != "Cluj-Napoca" {
		t.Errorf("PromptCity = %q, want Cluj-Napoca", res.PromptCity)
	}
}

// City names are matched after diacritic folding on both sides.
func TestResolve_DiacriticInsensitiveCity(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	tests := []struct {
		query string
		want  string
	}{
		{"unde beau o cafea in timisoara", "Timișoara"},
		{"unde beau o cafea în Timișoara", "Timișoara"},
		{"vreau pizza in bucuresti", "București"},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.query, model.ConversationContext{}, nil)
		if res.SearchCity != tt.want {
			t.Errorf("Resolve(%q).SearchCity = %q, want %q", tt.query, res.SearchCity, tt.want)
		}
	}
}

// A query mentioning only one city never resolves a different one.
func TestResolve_NoCrossCityMatch(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("vreau pizza in Timisoara", model.ConversationContext{}, nil)
	if res.SearchCity != "Timișoara" {
		t.Errorf("SearchCity = %q, want Timișoara", res.SearchCity)
	}
	for _, other := range []string{"Cluj-Napoca", "București"} {
		if res.SearchCity == other {
			t.Errorf("resolved unrelated city %q", other)
		}
	}
}

func TestResolve_ChitChat(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	prior := model.ConversationContext{LastIntent: "vreau pizza", LastCity: "Timișoara"}
	for _, query := range []string{"salut", "multumesc frumos", "ce mai faci?"} {
		res := r.Resolve(query, prior, nil)
		if !res.ChitChat {
			t.Errorf("Resolve(%q) not classified as chit-chat", query)
			continue
		}
		if res.SearchIntent != "" || res.SearchCity != "" {
			t.Errorf("Resolve(%q) produced a search: intent=%q city=%q", query, res.SearchIntent, res.SearchCity)
		}
		if res.NewContext != (model.ConversationContext{}) {
			t.Errorf("Resolve(%q) did not clear context: %+v", query, res.NewContext)
		}
	}
}

// A greeting that also names a location keyword is not chit-chat.
func TestResolve_KeywordBeatsSmallTalk(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("salut, unde gasesc o cafenea in Cluj-Napoca?", model.ConversationContext{}, nil)
	if res.ChitChat {
		t.Fatal("location query classified as chit-chat")
	}
	if res.SearchCity != "Cluj-Napoca" {
		t.Errorf("SearchCity = %q, want Cluj-Napoca", res.SearchCity)
	}
}

func TestResolve_KeywordWithoutCity(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("vreau pizza", model.ConversationContext{}, nil)

	// No city known yet: the search is suppressed and the generator is
	// asked to request one, but the intent is remembered.
	if res.SearchIntent != "" {
		t.Errorf("SearchIntent = %q, want empty (search suppressed)", res.SearchIntent)
	}
	if res.SearchCity != "" {
		t.Errorf("SearchCity = %q, want empty", res.SearchCity)
	}
	if res.NewContext.LastIntent != "vreau pizza" {
		t.Errorf("LastIntent = %q, want remembered", res.NewContext.LastIntent)
	}
	if res.Query == "vreau pizza" {
		t.Error("Query should carry the specify-a-city instruction, not the raw text")
	}
}

// Turn 1 establishes an intent with no city; turn 2 supplies only a
// city. Turn 2 must search with turn 1's intent in turn 2's city.
func TestResolve_ContextCarryOver(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	turn1 := r.Resolve("vreau pizza", model.ConversationContext{}, nil)
	if turn1.NewContext.LastIntent != "vreau pizza" || turn1.NewContext.LastCity != "" {
		t.Fatalf("turn 1 context = %+v", turn1.NewContext)
	}

	turn2 := r.Resolve("in Timisoara", turn1.NewContext, nil)
	if turn2.SearchIntent != "vreau pizza" {
		t.Errorf("turn 2 SearchIntent = %q, want turn 1's intent", turn2.SearchIntent)
	}
	if turn2.SearchCity != "Timișoara" {
		t.Errorf("turn 2 SearchCity = %q, want Timișoara", turn2.SearchCity)
	}
	if turn2.NewContext.LastCity != "Timișoara" || turn2.NewContext.LastIntent != "vreau pizza" {
		t.Errorf("turn 2 context = %+v", turn2.NewContext)
	}
}

func TestResolve_KeywordReusesRememberedCity(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("si un club?", model.ConversationContext{LastIntent: "vreau pizza", LastCity: "București"}, nil)
	if res.SearchIntent != "si un club?" {
		t.Errorf("SearchIntent = %q, want new keyword text", res.SearchIntent)
	}
	if res.SearchCity != "București" {
		t.Errorf("SearchCity = %q, want remembered city", res.SearchCity)
	}
}

func TestResolve_BareCityWithoutIntent(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	res := r.Resolve("Brasov e frumos? adica Timisoara", model.ConversationContext{}, nil)
	// Only Timișoara is a known city here
	if res.SearchIntent != "" {
		t.Errorf("SearchIntent = %q, want empty", res.SearchIntent)
	}
	if res.NewContext.LastCity != "Timișoara" {
		t.Errorf("LastCity = %q, want Timișoara remembered", res.NewContext.LastCity)
	}
	if res.NewContext.LastIntent != "" {
		t.Errorf("LastIntent = %q, want cleared", res.NewContext.LastIntent)
	}
}

func TestResolve_FollowUpReusesBoth(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	prior := model.ConversationContext{LastIntent: "vreau o cafea", LastCity: "Cluj-Napoca"}
	res := r.Resolve("altceva?", prior, nil)

	if res.SearchIntent != prior.LastIntent || res.SearchCity != prior.LastCity {
		t.Errorf("follow-up did not reuse context: intent=%q city=%q", res.SearchIntent, res.SearchCity)
	}
	if res.NewContext != prior {
		t.Errorf("follow-up changed context: %+v", res.NewContext)
	}
}

// Resolve must not depend on anything but its inputs.
func TestResolve_Pure(t *testing.T) {
	r := NewContextResolver(testCatalog(t), 10)

	ctx := model.ConversationContext{LastIntent: "pizza", LastCity: "Timișoara"}
	first := r.Resolve("altceva?", ctx, nil)
	second := r.Resolve("altceva?", ctx, nil)

	if first.SearchIntent != second.SearchIntent ||
		first.SearchCity != second.SearchCity ||
		first.NewContext != second.NewContext {
		t.Errorf("same inputs produced different resolutions: %+v vs %+v", first, second)
	}
	if ctx.LastIntent != "pizza" || ctx.LastCity != "Timișoara" {
		t.Errorf("input context was mutated: %+v", ctx)
	}
}

func TestPromptCity_Fallbacks(t *testing.T) {
	cat := testCatalog(t)
	r := NewContextResolver(cat, 10)

	// Nothing anywhere: top-rated record's city (Origo, București)
	res := r.Resolve("altceva?", model.ConversationContext{}, nil)
	if res.PromptCity != "București" {
		t.Errorf("PromptCity = %q, want catalog default București", res.PromptCity)
	}

	// A user mention in the history window wins over the default
	history := []model.Message{
		{Sender: model.SenderUser, Text: "ce parere ai de timisoara?"},
	}
	res = r.Resolve("altceva?", model.ConversationContext{}, history)
	if res.PromptCity != "Timișoara" {
		t.Errorf("PromptCity = %q, want historical Timișoara", res.PromptCity)
	}

	// A bot recommendation in the window also counts
	history = []model.Message{
		{Sender: model.SenderBot, RecommendedLocations: []model.Location{
			{Name: "Cafe Central", Address: "Str. X, Cluj-Napoca", Category: "cafenea", Rating: 4.7},
		}},
	}
	res = r.Resolve("altceva?", model.ConversationContext{}, history)
	if res.PromptCity != "Cluj-Napoca" {
		t.Errorf("PromptCity = %q, want Cluj-Napoca from recommendation", res.PromptCity)
	}
}
