package service

import (
	"context"
	"fmt"
	"log"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/utils"
)

// Embedder generates embeddings for texts
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	IsEnabled() bool
}

// EmbeddingStore persists and queries location embeddings
type EmbeddingStore interface {
	UpsertEmbedding(ctx context.Context, locationID int, embedding []float32) error
	SimilarTo(ctx context.Context, locationID, k int) ([]int, error)
	HasEmbedding(ctx context.Context, locationID int) (bool, error)
}

// EmbeddingService embeds catalog descriptions via the generation API's
// embedding endpoint and answers similar-location queries over the
// stored vectors. Requires both an API key and the Postgres store.
type EmbeddingService struct {
	embedder Embedder
	store    EmbeddingStore
	catalog  *catalog.Catalog
}

// NewEmbeddingService creates a new embedding service
func NewEmbeddingService(embedder Embedder, store EmbeddingStore, cat *catalog.Catalog) *EmbeddingService {
	return &EmbeddingService{
		embedder: embedder,
		store:    store,
		catalog:  cat,
	}
}

// Enabled reports whether the feature can run
func (s *EmbeddingService) Enabled() bool {
	return s != nil && s.embedder != nil && s.embedder.IsEnabled() && s.store != nil
}

// embeddingText serializes a record into the text that gets embedded
func embeddingText(loc *model.Location) string {
	return fmt.Sprintf("%s. %s, %s. %s",
		loc.Name, utils.SimplifyCategory(loc.Category), loc.City(), loc.ShortDescription)
}

// Rebuild re-embeds the whole catalog and upserts every vector.
// Per-record store failures are collected, not fatal.
func (s *EmbeddingService) Rebuild(ctx context.Context) (int, []string, error) {
	if !s.Enabled() {
		return 0, nil, fmt.Errorf("embedding service is not enabled")
	}

	locations := s.catalog.All()
	texts := make([]string, 0, len(locations))
	for i := range locations {
		texts = append(texts, embeddingText(&locations[i]))
	}

	embeddings, err := s.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(embeddings) != len(locations) {
		return 0, nil, fmt.Errorf("embedding count mismatch: %d locations, %d embeddings", len(locations), len(embeddings))
	}

	var errs []string
	stored := 0
	for i := range locations {
		if err := s.store.UpsertEmbedding(ctx, locations[i].ID, embeddings[i]); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		stored++
	}

	log.Printf("Embedded %d/%d catalog records", stored, len(locations))
	return stored, errs, nil
}

// SimilarLocations returns up to k catalog records nearest to the given
// location in embedding space, nearest first.
func (s *EmbeddingService) SimilarLocations(ctx context.Context, locationID, k int) ([]model.Location, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("embedding service is not enabled")
	}
	if s.catalog.Get(locationID) == nil {
		return nil, fmt.Errorf("unknown location %d", locationID)
	}
	if k <= 0 {
		k = 3
	}

	// A missing reference vector would otherwise just produce an empty
	// result set.
	ok, err := s.store.HasEmbedding(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no embedding stored for location %d, rebuild embeddings first", locationID)
	}

	ids, err := s.store.SimilarTo(ctx, locationID, k)
	if err != nil {
		return nil, err
	}

	out := make([]model.Location, 0, len(ids))
	for _, id := range ids {
		if loc := s.catalog.Get(id); loc != nil {
			out = append(out, *loc)
		}
	}
	return out, nil
}
