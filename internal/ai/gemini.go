package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"gemcanvas/internal/model"
)

type GeminiConfig struct {
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string
	Timeout     time.Duration
}

// GeminiGateway serves chat, speech and canvas requests through the Gemini API.
type GeminiGateway struct {
	client *genai.Client
	cfg    GeminiConfig
}

func NewGeminiGateway(ctx context.Context, cfg GeminiConfig) (*GeminiGateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if cfg.Voice == "" {
		cfg.Voice = "Kore"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &GeminiGateway{client: client, cfg: cfg}, nil
}

func (g *GeminiGateway) CompleteChat(
	ctx context.Context,
	prompt string,
	history []model.Message,
	systemInstruction string,
	knowledgeURLs []string,
) (string, error) {
	turns := chatTurns(prompt, history)
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.text, genai.Role(role)))
	}

	urls := capURLs(knowledgeURLs)
	tools := []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	if len(urls) > 0 {
		tools = append(tools, &genai.Tool{URLContext: &genai.URLContext{}})
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(knowledgeInstruction(systemInstruction, urls), genai.RoleUser),
		Tools:             tools,
	})
	if err != nil {
		return "", fmt.Errorf("gemini chat request failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return AppendSources(text, groundingSources(resp)), nil
}

func (g *GeminiGateway) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.SpeechModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.cfg.Voice},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini speech request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoAudio
	}
	part := resp.Candidates[0].Content.Parts[0]
	if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return "", ErrNoAudio
	}
	return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
}

func (g *GeminiGateway) SynthesizeCanvas(
	ctx context.Context,
	history []model.Message,
	systemInstruction string,
	currentSignature string,
) (CanvasResult, error) {
	prompt := BuildCanvasPrompt(history, systemInstruction, currentSignature)
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini canvas request failed: %w", err)
	}
	return ParseCanvasResponse(resp.Text()), nil
}

func groundingSources(resp *genai.GenerateContentResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
