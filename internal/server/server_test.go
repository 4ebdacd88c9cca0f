package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdocs/internal/domain"
	"ragdocs/internal/openaicompat"
	"ragdocs/internal/service"
)

type fakeRetriever struct {
	results []domain.SearchResult
	err     error
	gotK    int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, k int) ([]domain.SearchResult, error) {
	f.gotK = k
	return f.results, f.err
}

func (f *fakeRetriever) Len() int { return 42 }

type fakeAssistant struct {
	answer  *service.Answer
	err     error
	history []domain.ChatMessage
}

func (f *fakeAssistant) Ask(_ context.Context, history []domain.ChatMessage, _ string) (*service.Answer, error) {
	f.history = history
	return f.answer, f.err
}

func do(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func newRouter(r Retriever, a Assistant) *gin.Engine {
	return NewRouter(NewHandler(r, a, 3), gin.TestMode)
}

func TestHealth(t *testing.T) {
	rec, payload := do(t, newRouter(&fakeRetriever{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), payload["chunks"])
}

func TestSearch(t *testing.T) {
	fr := &fakeRetriever{results: []domain.SearchResult{
		{Chunk: domain.Chunk{ID: "c1", Text: "cats", Source: "a.md", Position: 2}, Score: 0.5},
	}}
	router := newRouter(fr, nil)

	rec, payload := do(t, router, http.MethodPost, "/api/v1/search", `{"query":"cats"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(CodeOK), payload["code"])
	assert.Equal(t, 3, fr.gotK)
	hits := payload["data"].(map[string]any)["results"].([]any)
	require.Len(t, hits, 1)
	hit := hits[0].(map[string]any)
	assert.Equal(t, "c1", hit["id"])
	assert.Equal(t, "a.md", hit["source"])
	assert.Equal(t, float64(2), hit["position"])

	_, _ = do(t, router, http.MethodPost, "/api/v1/search", `{"query":"cats","top_k":0}`)
	assert.Equal(t, 0, fr.gotK)
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"missing query", `{}`, nil},
		{"malformed json", `{`, nil},
		{"negative top_k", `{"query":"q","top_k":-1}`, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&fakeRetriever{err: tt.err}, nil)
			rec, payload := do(t, router, http.MethodPost, "/api/v1/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, float64(CodeBadRequest), payload["code"])
		})
	}
}

func TestChat(t *testing.T) {
	fa := &fakeAssistant{answer: &service.Answer{
		Content:  "They purr.",
		Grounded: true,
		Sources:  []domain.SearchResult{{Chunk: domain.Chunk{ID: "c1"}, Score: 0.9}},
	}}
	body := `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}],"question":"cats?"}`

	rec, payload := do(t, newRouter(&fakeRetriever{}, fa), http.MethodPost, "/api/v1/chat", body)
	require.Equal(t, http.StatusOK, rec.Code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "They purr.", data["answer"])
	assert.Equal(t, true, data["grounded"])
	assert.Len(t, data["sources"], 1)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}, fa.history)
}

func TestChat_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"model service error", fmt.Errorf("generate answer: %w", &openaicompat.APIError{StatusCode: 503}), http.StatusBadGateway, CodeUpstream},
		{"unexpected reply shape", &openaicompat.ShapeError{Kind: "chat completion"}, http.StatusBadGateway, CodeUpstream},
		{"local failure", errors.New("disk full"), http.StatusInternalServerError, CodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAssistant{err: tt.err}
			rec, payload := do(t, newRouter(&fakeRetriever{}, fa), http.MethodPost, "/api/v1/chat", `{"question":"q"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, float64(tt.wantCode), payload["code"])
			assert.Equal(t, "chat failed", payload["message"])
		})
	}
}

func TestChat_NotConfigured(t *testing.T) {
	rec, _ := do(t, newRouter(&fakeRetriever{}, nil), http.MethodPost, "/api/v1/chat", `{"question":"q"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
