package openaicompat

import "encoding/json"

// EmbeddingShape extracts a vector from one response layout.
type EmbeddingShape interface {
	Name() string
	Embedding(payload []byte) ([]float64, bool)
}

// ReplyShape extracts assistant text from one response layout.
type ReplyShape interface {
	Name() string
	Reply(payload []byte) (string, bool)
}

// DataEnvelope is the OpenAI layout: {"data":[{"embedding":[...]}]}.
type DataEnvelope struct{}

func (DataEnvelope) Name() string { return "data[0].embedding" }

func (DataEnvelope) Embedding(payload []byte) ([]float64, bool) {
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, false
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, false
	}
	return out.Data[0].Embedding, true
}

// BareEmbedding is the layout of Ollama and LM Studio: {"embedding":[...]}.
type BareEmbedding struct{}

func (BareEmbedding) Name() string { return "embedding" }

func (BareEmbedding) Embedding(payload []byte) ([]float64, bool) {
	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &out); err != nil || len(out.Embedding) == 0 {
		return nil, false
	}
	return out.Embedding, true
}

// ChoicesEnvelope is the OpenAI layout: {"choices":[{"message":{"content":"..."}}]}.
type ChoicesEnvelope struct{}

func (ChoicesEnvelope) Name() string { return "choices[0].message" }

func (ChoicesEnvelope) Reply(payload []byte) (string, bool) {
	var out struct {
		Choices []struct {
			Message *struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", false
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return "", false
	}
	return out.Choices[0].Message.Content, true
}

// BareField reads a top-level string field, e.g. {"content":"..."} or
// {"response":"..."}.
type BareField string

func (f BareField) Name() string { return string(f) }

func (f BareField) Reply(payload []byte) (string, bool) {
	var out map[string]json.RawMessage
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", false
	}
	raw, ok := out[string(f)]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

var (
	defaultEmbeddingShapes = []EmbeddingShape{DataEnvelope{}, BareEmbedding{}}
	defaultReplyShapes     = []ReplyShape{ChoicesEnvelope{}, BareField("content"), BareField("response")}
)

// ParseEmbedding tries each known embedding layout in order.
func ParseEmbedding(payload []byte) ([]float64, error) {
	for _, shape := range defaultEmbeddingShapes {
		if v, ok := shape.Embedding(payload); ok {
			return v, nil
		}
	}
	return nil, &ShapeError{Kind: "embedding", Body: string(payload)}
}

// ParseReply tries each known chat completion layout in order.
func ParseReply(payload []byte) (string, error) {
	for _, shape := range defaultReplyShapes {
		if s, ok := shape.Reply(payload); ok {
			return s, nil
		}
	}
	return "", &ShapeError{Kind: "chat completion", Body: string(payload)}
}
