package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"schedule": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {Type: genai.TypeString},
					"task": {Type: genai.TypeString},
					"note": {Type: genai.TypeString},
				},
				Required: []string{"date", "task"},
			},
		},
		"tips": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"schedule", "tips"},
}

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	l      *zap.Logger
}

// NewGemini builds a client that asks the model for schema-constrained JSON.
func NewGemini(ctx context.Context, apiKey, model string, l *zap.Logger) (Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = planSchema
	return &geminiClient{client: client, model: m, l: named(l, "gemini")}, nil
}

func (c *geminiClient) Name() string { return "gemini" }

func (c *geminiClient) PlanCrop(ctx context.Context, req Request) Result {
	resp, err := c.model.GenerateContent(ctx, genai.Text(Prompt(req)))
	if err != nil {
		c.l.Warn("generate content", zap.Error(err))
		return failed()
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		c.l.Warn("no candidates")
		return failed()
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	res, err := ParseResult(sb.String())
	if err != nil {
		c.l.Warn("malformed plan", zap.Error(err))
		return failed()
	}
	return res
}

func (c *geminiClient) Close() error { return c.client.Close() }

func named(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named("advisor").Named(name)
}
