package service

import (
	"context"
	"fmt"
	"strings"

	"ragdocs/internal/domain"
)

// NoContextNote is appended to answers produced without any retrieved
// documentation.
const NoContextNote = "No supporting documentation was found for this question."

// Searcher finds the chunks relevant to a question.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// Answer is the assistant reply to one question.
type Answer struct {
	Content  string
	Sources  []domain.SearchResult
	Grounded bool
}

// Assistant answers questions with a chat model grounded on retrieved chunks.
type Assistant struct {
	searcher     Searcher
	generator    domain.Generator
	systemPrompt string
	topK         int
}

// NewAssistant creates an assistant retrieving topK chunks per question.
func NewAssistant(searcher Searcher, generator domain.Generator, systemPrompt string, topK int) *Assistant {
	return &Assistant{searcher: searcher, generator: generator, systemPrompt: systemPrompt, topK: topK}
}

// Ask answers question in the context of the earlier turns in history.
func (a *Assistant) Ask(ctx context.Context, history []domain.ChatMessage, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	for i, msg := range history {
		if msg.Role == domain.RoleSystem || !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: history message %d has role %q", domain.ErrInvalidInput, i, msg.Role)
		}
	}

	sources, err := a.searcher.Search(ctx, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: SystemMessage(a.systemPrompt, sources)})
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})

	reply, err := a.generator.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer := &Answer{Content: reply, Sources: sources, Grounded: len(sources) > 0}
	if !answer.Grounded {
		answer.Content = strings.TrimRight(reply, "\n") + "\n\n" + NoContextNote
	}
	return answer, nil
}

// SystemMessage appends the retrieved chunks to prompt, one labelled block
// per chunk in rank order.
func SystemMessage(prompt string, sources []domain.SearchResult) string {
	if len(sources) == 0 {
		return prompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nDocumentation:")
	for i, r := range sources {
		fmt.Fprintf(&b, "\n\n[%d] %s (part %d)\n%s", i+1, r.Chunk.Source, r.Chunk.Position+1, r.Chunk.Text)
	}
	return b.String()
}
