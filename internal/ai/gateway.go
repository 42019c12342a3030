// Package ai talks to the generative model behind every Gem: chat replies,
// spoken audio for a reply and the end-of-session Connection Canvas.
package ai

import (
	"errors"
	"fmt"
	"strings"

	"gemcanvas/internal/model"
)

// MaxKnowledgeURLs is the most reference URLs one request may carry.
const MaxKnowledgeURLs = 20

var (
	ErrEmptyReply        = errors.New("model returned an empty reply")
	ErrNoAudio           = errors.New("audio generation failed or returned no data")
	ErrSpeechUnsupported = errors.New("speech synthesis is not supported by this provider")
)

// Source is a web page the model grounded a reply on.
type Source struct {
	Title string
	URI   string
}

type turn struct {
	role string
	text string
}

// chatTurns converts a chat history into model turns followed by the prompt.
// System notices never reach the model. The prompt is not repeated when the
// history already ends with the same user turn.
func chatTurns(prompt string, history []model.Message) []turn {
	turns := make([]turn, 0, len(history)+1)
	for _, m := range history {
		if m.IsLoading {
			continue
		}
		switch m.Sender {
		case model.SenderUser:
			turns = append(turns, turn{role: "user", text: m.Text})
		case model.SenderModel:
			turns = append(turns, turn{role: "model", text: m.Text})
		}
	}
	if n := len(turns); n > 0 && turns[n-1].role == "user" && turns[n-1].text == prompt {
		return turns
	}
	return append(turns, turn{role: "user", text: prompt})
}

func capURLs(urls []string) []string {
	urls = model.NormalizeURLs(urls)
	if len(urls) > MaxKnowledgeURLs {
		urls = urls[:MaxKnowledgeURLs]
	}
	return urls
}

// knowledgeInstruction extends the system instruction with the knowledge
// base the Gem is bound to.
func knowledgeInstruction(systemInstruction string, urls []string) string {
	if len(urls) == 0 {
		return systemInstruction
	}
	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nPrefer the following reference pages when you answer:\n")
	for _, u := range urls {
		b.WriteString("- ")
		b.WriteString(u)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// AppendSources adds a markdown source list to a reply. Sources without a URI
// are skipped.
func AppendSources(text string, sources []Source) string {
	var links []string
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if s.URI == "" {
			continue
		}
		if _, dup := seen[s.URI]; dup {
			continue
		}
		seen[s.URI] = struct{}{}
		title := s.Title
		if title == "" {
			title = s.URI
		}
		links = append(links, fmt.Sprintf("* [%s](%s)", title, s.URI))
	}
	if len(links) == 0 {
		return text
	}
	return text + "\n\n---\n**Sources:**\n" + strings.Join(links, "\n")
}
