package domain

import "context"

// Document represents a single source file loaded into the system.
type Document struct {
	Source  string
	Path    string
	Content string
}

// Chunk is a bounded passage of a document paired with its embedding.
// Position is the zero-based index of the chunk within its source.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
	Source    string    `json:"source"`
	Position  int       `json:"position"`
}

// SearchResult represents a matching chunk with its cosine similarity.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Preparer is implemented by embedders that need a pass over the corpus
// before they can embed anything.
type Preparer interface {
	Prepare(corpus []string) error
}

// Generator produces an assistant reply for a conversation.
type Generator interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
// Returned chunks carry no embedding yet.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}
