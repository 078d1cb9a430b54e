// Package airouter is the external Embedding + Completion interface (spec §6),
// a trimmed descendant of internal/platform/openai's client: a single HTTP
// client hitting the OpenAI-compatible embeddings/chat-completions endpoints,
// with a process-wide token-bucket rate limiter (spec §5: 3000 calls/60s).
// The bucket refills at 3000 calls per 60s and holds a burst of 3000, so it
// is not a strict sliding window: after an idle period up to about 6000
// calls can pass within one 60s span.
package airouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

// EmbedResult carries the vector plus the cost/token accounting the spec's
// Embedding interface reports.
type EmbedResult struct {
	Vector           []float32
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
}

type Embedder interface {
	Embed(ctx context.Context, text string) (EmbedResult, error)
}

type Completer interface {
	// Complete runs a chat completion at temperature 0.7, max 500 output tokens.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Client interface {
	Embedder
	Completer
}

// costPerMillionTokens is a rough static price table, the way the teacher's
// openai client hardcodes model defaults rather than fetching pricing live.
var costPerMillionTokens = map[string]float64{
	"text-embedding-3-small": 0.02,
	"text-embedding-3-large": 0.13,
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds the client from OPENAI_API_KEY / OPENAI_BASE_URL /
// OPENAI_EMBED_MODEL / OPENAI_CHAT_MODEL, the same env convention the
// teacher's platform/openai client uses.
func New(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	embedModel := strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	chatModel := strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL"))
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	return &client{
		log:        log.With("service", "AIRouterClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// Token bucket refilled at 3000 calls / 60s with a burst of 3000,
		// shared by every caller of this client; callers over budget wait.
		limiter: rate.NewLimiter(rate.Limit(3000.0/60.0), 3000),
	}, nil
}

type embeddingsRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *client) Embed(ctx context.Context, text string) (EmbedResult, error) {
	const op = "airouter.embed"
	if err := c.limiter.Wait(ctx); err != nil {
		return EmbedResult{}, apierr.Classify(op, err)
	}

	req := embeddingsRequest{Model: c.embedModel, Input: text}
	var resp embeddingsResponse
	if err := c.do(ctx, op, "/v1/embeddings", req, &resp); err != nil {
		return EmbedResult{}, err
	}
	if len(resp.Data) == 0 {
		return EmbedResult{}, apierr.Upstream(op, "embeddings response had no data", nil)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float32(f)
	}

	costPerM := costPerMillionTokens[c.embedModel]
	return EmbedResult{
		Vector:       vec,
		PromptTokens: resp.Usage.PromptTokens,
		CostUSD:      float64(resp.Usage.TotalTokens) / 1_000_000 * costPerM,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "airouter.complete"
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apierr.Classify(op, err)
	}

	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	}
	var resp chatResponse
	if err := c.do(ctx, op, "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apierr.Upstream(op, "completion response had no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *client) do(ctx context.Context, op, path string, body, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return apierr.Upstream(op, "encode request failed", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return apierr.Upstream(op, "build request failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apierr.Classify(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apierr.Upstream(op, "read response failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierr.Upstream(op, fmt.Sprintf("http status=%d body=%s", resp.StatusCode, truncate(raw)), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apierr.Upstream(op, "decode response failed", err)
	}
	return nil
}

func truncate(raw []byte) string {
	const max = 512
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
