package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/status"
)

// geminiClient implements Completer using the Google Gemini API.
type geminiClient struct {
	client *genai.Client
	cfg    Config
}

func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cannot create Gemini client: API key is missing")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client, cfg: cfg}, nil
}

func (c *geminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	if c.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.MaxTokens))
	}

	// Gemini carries the system turn separately from the user content.
	var userParts []string
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		default:
			userParts = append(userParts, m.Content)
		}
	}

	timeout := c.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(strings.Join(userParts, "\n")))
	if err != nil {
		if st, ok := status.FromError(err); ok {
			if st.Code() == 16 /* UNAUTHENTICATED */ || st.Code() == 7 /* PERMISSION_DENIED */ {
				return "", fmt.Errorf("invalid Gemini API key or insufficient permissions: %w", err)
			}
		}
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	return firstTextPart(resp)
}

func (c *geminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func firstTextPart(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if resp != nil && len(resp.Candidates) > 0 {
			finishReason = resp.Candidates[0].FinishReason.String()
		}
		return "", fmt.Errorf("empty or incomplete response from Gemini API (finish reason: %s)", finishReason)
	}
	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type: %T", part)
	}
	return string(text), nil
}
