package cli

import (
	"fmt"
	"strings"

	"ragdocs/internal/config"
	"ragdocs/internal/domain"
	embopenai "ragdocs/internal/embedding/openai"
	"ragdocs/internal/embedding/tfidf"
	genopenai "ragdocs/internal/generation/openai"
	"ragdocs/internal/logger"
	"ragdocs/internal/service"
	"ragdocs/internal/summarizer"
	"ragdocs/internal/vectorstore/jsonfile"
)

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		return embopenai.NewClient(embopenai.Config{Transport: cfg.Transport(), Model: cfg.Embedder.Model})
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q", domain.ErrInvalidInput, cfg.Embedder.Type)
	}
}

func newGenerator(cfg *config.AppConfig) (*genopenai.Client, error) {
	return genopenai.NewClient(genopenai.Config{Transport: cfg.Transport(), Model: cfg.Generator.Model})
}

// openCollection loads the persisted collection and prepares corpus based
// embedders over its chunk texts so queries land in the same vector space.
func openCollection(path string, embedder domain.Embedder) (*jsonfile.Storage, error) {
	store, err := jsonfile.Open(path)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		logger.Warn("collection %s is empty; run `ragdocs ingest` first", store.Path())
		return store, nil
	}
	if p, ok := embedder.(domain.Preparer); ok {
		if err := p.Prepare(chunkTexts(store.Chunks())); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", embedder.Name(), err)
		}
	}
	logger.Debug("loaded %d chunks from %s", store.Len(), store.Path())
	return store, nil
}

// newRetriever wires the embedder to the collection at cfg.Store.Path.
func newRetriever(cfg *config.AppConfig) (*service.Retriever, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	store, err := openCollection(cfg.Store.Path, embedder)
	if err != nil {
		return nil, err
	}
	return service.NewRetriever(embedder, store), nil
}

func newAssistant(cfg *config.AppConfig, retriever *service.Retriever) (*service.Assistant, error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("answering with %s, top %d chunks", gen.Model(), cfg.Retrieval.TopK)
	return service.NewAssistant(retriever, gen, cfg.Generator.SystemPrompt, cfg.Retrieval.TopK), nil
}

// corpusSummary summarizes the texts of a loaded collection.
func corpusSummary(store *jsonfile.Storage) string {
	if store.Len() == 0 {
		return "No documents ingested yet."
	}
	summary, err := summarizer.NewFrequencySummarizer().Summarize(strings.Join(chunkTexts(store.Chunks()), "\n"), service.DefaultSummarySentences)
	if err != nil {
		return ""
	}
	return summary
}

func chunkTexts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	return texts
}
