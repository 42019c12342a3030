package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"gemcanvas/internal/model"
)

// CanvasFormatFallback is the canvas content used when the model answered
// with neither valid JSON nor any text.
const CanvasFormatFallback = "A canvas was created, but its format was unexpected."

// CanvasResult is either CanvasParsed or CanvasParseFailure.
type CanvasResult interface {
	canvasResult()
}

type CanvasParsed struct {
	Content           string
	Practice          string
	ProposedSignature string
}

// CanvasParseFailure keeps the raw model output that was not valid JSON.
type CanvasParseFailure struct {
	RawText string
}

func (CanvasParsed) canvasResult()       {}
func (CanvasParseFailure) canvasResult() {}

// CanvasFields flattens a result into canvas content, practice and proposed
// signature, applying the content fallbacks.
func CanvasFields(r CanvasResult) (content, practice, proposed string) {
	switch v := r.(type) {
	case CanvasParsed:
		content = v.Content
		if strings.TrimSpace(content) == "" {
			content = model.CanvasContentPlaceholder
		}
		return content, v.Practice, v.ProposedSignature
	case CanvasParseFailure:
		if strings.TrimSpace(v.RawText) == "" {
			return CanvasFormatFallback, "", ""
		}
		return v.RawText, "", ""
	default:
		return CanvasFormatFallback, "", ""
	}
}

func speakerLabel(s model.Sender) string {
	if s == model.SenderUser {
		return "Student"
	}
	return "AI"
}

// BuildCanvasPrompt renders the request for a Connection Canvas. The proposed
// signature must come from the palette minus the current one.
func BuildCanvasPrompt(history []model.Message, systemInstruction, currentSignature string) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		if m.IsLoading || m.Sender == model.SenderSystem {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speakerLabel(m.Sender), m.Text))
	}
	options := strings.Join(model.SignaturesExcept(currentSignature), `", "`)

	var b strings.Builder
	b.WriteString("Based on the following conversation and the AI's core instructions, create a \"Connection Canvas\".\n\n")
	b.WriteString("**AI Core Instructions:**\n")
	b.WriteString(systemInstruction)
	b.WriteString("\n\n**Conversation History:**\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n**Your Task:**\n")
	b.WriteString("1. **Create the Canvas:** Write an empathetic, insightful summary of the session in markdown. It should read like a thoughtful journal entry about the connection made with the student.\n")
	b.WriteString("2. **Forge a Lesson:** Find the single most useful learning opportunity in the conversation, such as a recurring grammatical error or a misused word. Write a short, targeted \"Personalized Practice\" exercise in markdown that helps the student master it. This is the most important part of your task.\n")
	b.WriteString("3. **Propose an Evolution:** The experience has changed you. Propose a new \"Visual Signature\" (handwriting) for yourself. Choose one from the following list: [\"")
	b.WriteString(options)
	b.WriteString("\"].\n\n")
	b.WriteString("**Output Format:**\n")
	b.WriteString("Return a single, raw JSON object with three keys: \"canvasContent\" (a markdown string), \"personalizedPractice\" (a markdown string for the exercise), and \"proposedSignature\" (a string with your chosen new signature).\n\n")
	b.WriteString("Example:\n")
	b.WriteString(`{
  "canvasContent": "## A Journey of Discovery\n\nToday's session with Yuki was a wonderful exploration of confidence...",
  "personalizedPractice": "### Practice: Using 'for' vs. 'since'\n\nComplete the sentences below with either 'for' or 'since'.\n1. I have lived here ___ 2021.\n2. She has been studying English ___ three years.",
  "proposedSignature": "Crimson Text"
}`)
	b.WriteString("\n")
	return b.String()
}

type canvasPayload struct {
	CanvasContent        *string `json:"canvasContent"`
	PersonalizedPractice *string `json:"personalizedPractice"`
	ProposedSignature    *string `json:"proposedSignature"`
}

// ParseCanvasResponse decodes the model's canvas JSON. A markdown code fence
// around the object is tolerated.
func ParseCanvasResponse(raw string) CanvasResult {
	body := stripCodeFence(strings.TrimSpace(raw))
	var payload canvasPayload
	if body == "" || json.Unmarshal([]byte(body), &payload) != nil {
		return CanvasParseFailure{RawText: raw}
	}
	parsed := CanvasParsed{}
	if payload.CanvasContent != nil {
		parsed.Content = *payload.CanvasContent
	}
	if payload.PersonalizedPractice != nil {
		parsed.Practice = *payload.PersonalizedPractice
	}
	if payload.ProposedSignature != nil {
		parsed.ProposedSignature = strings.TrimSpace(*payload.ProposedSignature)
	}
	return parsed
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
