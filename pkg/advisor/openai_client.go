package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type openAI struct {
	endpoint string
	key      string
	model    string
	hc       *http.Client
	l        *zap.Logger
}

// NewOpenAI talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAI(endpoint, key, model string, hc *http.Client, l *zap.Logger) Client {
	if hc == nil {
		hc = &http.Client{Timeout: 25 * time.Second}
	}
	return &openAI{endpoint: strings.TrimRight(endpoint, "/"), key: key, model: model, hc: hc, l: named(l, "openai")}
}

func (c *openAI) Name() string { return "openai" }

func (c *openAI) PlanCrop(ctx context.Context, req Request) Result {
	content, err := c.complete(ctx, req)
	if err != nil {
		c.l.Warn("chat completion", zap.Error(err))
		return failed()
	}
	res, err := ParseResult(content)
	if err != nil {
		c.l.Warn("malformed plan", zap.Error(err))
		return failed()
	}
	return res
}

func (c *openAI) complete(ctx context.Context, r Request) (string, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a home vegetable garden advisor. Reply ONLY valid JSON."},
			{"role": "user", "content": Prompt(r)},
		},
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *openAI) Close() error { return nil }
