package model

import "time"

// ChatErrorText replaces a reply that could not be produced.
const ChatErrorText = "Sorry, I encountered an error. Please try again."

type Sender string

const (
	SenderUser   Sender = "user"
	SenderModel  Sender = "model"
	SenderSystem Sender = "system"
)

// Message is one chat turn. IsLoading marks the model placeholder that is
// waiting for a reply; it is only ever the last element of a history.
type Message struct {
	ID          string    `json:"id"`
	Sender      Sender    `json:"sender"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	IsLoading   bool      `json:"isLoading,omitempty"`
	AudioBase64 string    `json:"audioBase64,omitempty"`
}

func IsSender(s Sender) bool {
	return s == SenderUser || s == SenderModel || s == SenderSystem
}

func CloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// CountInFlight returns how many messages carry the in-flight marker.
func CountInFlight(messages []Message) int {
	n := 0
	for _, m := range messages {
		if m.IsLoading {
			n++
		}
	}
	return n
}
