package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragdocs/internal/domain"
	"ragdocs/internal/logger"
	"ragdocs/internal/openaicompat"
	"ragdocs/internal/service"
)

// Retriever is the search side of the pipeline.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	Len() int
}

// Assistant is the chat side of the pipeline.
type Assistant interface {
	Ask(ctx context.Context, history []domain.ChatMessage, question string) (*service.Answer, error)
}

// SearchRequest is the body of POST /api/v1/search. A missing top_k uses
// the configured default.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  *int   `json:"top_k"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
	Question string               `json:"question" binding:"required"`
}

type searchHit struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

type chatReply struct {
	Answer   string      `json:"answer"`
	Grounded bool        `json:"grounded"`
	Sources  []searchHit `json:"sources"`
}

// Handler serves the search and chat endpoints.
type Handler struct {
	retriever   Retriever
	assistant   Assistant
	defaultTopK int
}

// NewHandler creates a handler. assistant may be nil, in which case the chat
// endpoint reports that no generator is configured.
func NewHandler(retriever Retriever, assistant Assistant, defaultTopK int) *Handler {
	return &Handler{retriever: retriever, assistant: assistant, defaultTopK: defaultTopK}
}

// Health reports the collection size.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "chunks": h.retriever.Len()})
}

// Search ranks the collection against the query.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "invalid request payload")
		return
	}
	k := h.defaultTopK
	if req.TopK != nil {
		k = *req.TopK
	}
	results, err := h.retriever.Search(c.Request.Context(), req.Query, k)
	if err != nil {
		writeError(c, err, "search failed")
		return
	}
	ok(c, gin.H{"results": toHits(results)})
}

// Chat answers the question given the earlier conversation.
func (h *Handler) Chat(c *gin.Context) {
	if h.assistant == nil {
		fail(c, http.StatusServiceUnavailable, CodeInternalServer, "chat is not configured")
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeBadRequest, "invalid request payload")
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), req.Messages, req.Question)
	if err != nil {
		writeError(c, err, "chat failed")
		return
	}
	ok(c, chatReply{Answer: answer.Content, Grounded: answer.Grounded, Sources: toHits(answer.Sources)})
}

func writeError(c *gin.Context, err error, message string) {
	if errors.Is(err, domain.ErrInvalidInput) {
		fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	if openaicompat.IsCollaboratorError(err) {
		fail(c, http.StatusBadGateway, CodeUpstream, message)
		return
	}
	fail(c, http.StatusInternalServerError, CodeInternalServer, message)
}

func toHits(results []domain.SearchResult) []searchHit {
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{
			ID:       r.Chunk.ID,
			Source:   r.Chunk.Source,
			Position: r.Chunk.Position,
			Text:     r.Chunk.Text,
			Score:    r.Score,
		})
	}
	return hits
}
