package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gemcanvas/internal/model"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAICompatibleGateway serves chat and canvas requests through any
// /chat/completions endpoint. It has no speech or web grounding.
type OpenAICompatibleGateway struct {
	httpClient *http.Client
	cfg        ChatConfig
}

func NewOpenAICompatibleGateway(cfg ChatConfig) *OpenAICompatibleGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &OpenAICompatibleGateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (c *OpenAICompatibleGateway) CompleteChat(
	ctx context.Context,
	prompt string,
	history []model.Message,
	systemInstruction string,
	knowledgeURLs []string,
) (string, error) {
	turns := chatTurns(prompt, history)
	messages := make([]ChatMessage, 0, len(turns)+1)
	messages = append(messages, ChatMessage{
		Role:    "system",
		Content: knowledgeInstruction(systemInstruction, capURLs(knowledgeURLs)),
	})
	for _, t := range turns {
		role := "user"
		if t.role == "model" {
			role = "assistant"
		}
		messages = append(messages, ChatMessage{Role: role, Content: t.text})
	}

	text, err := c.Complete(ctx, messages, false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

func (c *OpenAICompatibleGateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return "", ErrSpeechUnsupported
}

func (c *OpenAICompatibleGateway) SynthesizeCanvas(
	ctx context.Context,
	history []model.Message,
	systemInstruction string,
	currentSignature string,
) (CanvasResult, error) {
	prompt := BuildCanvasPrompt(history, systemInstruction, currentSignature)
	text, err := c.Complete(ctx, []ChatMessage{{Role: "user", Content: prompt}}, true)
	if err != nil {
		return nil, err
	}
	return ParseCanvasResponse(text), nil
}

func (c *OpenAICompatibleGateway) Complete(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": messages,
		"stream":   false,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
