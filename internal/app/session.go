package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

type SessionState string

const (
	SessionIdle          SessionState = "idle"
	SessionAwaitingReply SessionState = "awaiting-reply"
	SessionEnded         SessionState = "ended"
)

// Session is one live conversation with a Gem. At most one reply is in
// flight at a time.
type Session struct {
	mu      sync.Mutex
	gemID   string
	gems    *GemRegistry
	groups  *KnowledgeRegistry
	canvas  *CanvasWorkflow
	gateway Gateway
	log     *logger.Logger
	now     func() time.Time

	state   SessionState
	history []model.Message
}

func newSession(gem *model.Gem, gems *GemRegistry, groups *KnowledgeRegistry, canvas *CanvasWorkflow, gateway Gateway, log *logger.Logger) *Session {
	return &Session{
		gemID:   gem.ID,
		gems:    gems,
		groups:  groups,
		canvas:  canvas,
		gateway: gateway,
		log:     log.With("gem_id", gem.ID),
		now:     time.Now,
		state:   SessionIdle,
		history: model.CloneMessages(gem.ChatHistory),
	}
}

func (s *Session) GemID() string {
	return s.gemID
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the live history, in-flight placeholder included.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneMessages(s.history)
}

// SendMessage appends the user's text and waits for the Gem's reply. A chat
// failure turns the reply into a system error message rather than an error.
func (s *Session) SendMessage(ctx context.Context, text string) (reply model.Message, err error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrMessageEmpty
	}

	s.mu.Lock()
	switch s.state {
	case SessionEnded:
		s.mu.Unlock()
		return model.Message{}, ErrSessionEnded
	case SessionAwaitingReply:
		s.mu.Unlock()
		return model.Message{}, ErrReplyInFlight
	}
	gem := s.gems.Get(s.gemID)
	if gem == nil {
		s.mu.Unlock()
		return model.Message{}, ErrGemNotFound
	}

	now := s.now()
	s.history = append(s.history, model.Message{
		ID:        newID("user"),
		Sender:    model.SenderUser,
		Text:      text,
		Timestamp: now,
	})
	prior := model.CloneMessages(s.history)
	placeholder := model.Message{
		ID:        newID("model"),
		Sender:    model.SenderModel,
		Timestamp: now,
		IsLoading: true,
	}
	s.history = append(s.history, placeholder)
	s.state = SessionAwaitingReply
	s.mu.Unlock()

	reply = model.Message{
		ID:        placeholder.ID,
		Sender:    model.SenderSystem,
		Text:      model.ChatErrorText,
		Timestamp: now,
	}
	defer func() {
		s.settle(ctx, reply)
	}()

	var urls []string
	if group, ok := s.groups.Resolve(gem.KnowledgeBaseGroupID); ok {
		urls = group.URLs
	}

	answer, chatErr := s.gateway.CompleteChat(ctx, text, prior, gem.SystemInstruction, urls)
	if chatErr != nil {
		s.log.Error("chat completion failed", "error", chatErr)
		return reply, nil
	}

	audio, speechErr := s.gateway.SynthesizeSpeech(ctx, answer)
	if speechErr != nil {
		s.log.Warn("speech synthesis failed, reply has no audio", "error", speechErr)
		audio = ""
	}

	reply = model.Message{
		ID:          placeholder.ID,
		Sender:      model.SenderModel,
		Text:        answer,
		Timestamp:   s.now(),
		AudioBase64: audio,
	}
	return reply, nil
}

// settle swaps the placeholder for the final message, returns the session to
// idle and saves the history.
func (s *Session) settle(ctx context.Context, final model.Message) {
	s.mu.Lock()
	for i := range s.history {
		if s.history[i].ID == final.ID {
			s.history[i] = final
			break
		}
	}
	s.state = SessionIdle
	history := model.CloneMessages(s.history)
	s.mu.Unlock()

	// the caller may have gone away; the reply is still kept
	if err := s.gems.ReplaceHistory(context.WithoutCancel(ctx), s.gemID, history); err != nil {
		s.log.Error("save chat history failed", "error", err)
	}
}

// EndSession closes the conversation. A non-empty history is handed to the
// canvas workflow; an empty one ends with no canvas and no gateway call.
func (s *Session) EndSession(ctx context.Context) (*PendingCanvas, error) {
	s.mu.Lock()
	switch s.state {
	case SessionEnded:
		s.mu.Unlock()
		return nil, ErrSessionEnded
	case SessionAwaitingReply:
		s.mu.Unlock()
		return nil, ErrReplyInFlight
	}
	s.state = SessionEnded
	history := model.CloneMessages(s.history)
	s.mu.Unlock()

	if len(history) == 0 {
		return nil, nil
	}
	gem := s.gems.Get(s.gemID)
	if gem == nil {
		return nil, ErrGemNotFound
	}

	pending, err := s.canvas.BeginGeneration(ctx, gem, history)
	if errors.Is(err, ErrCanvasBusy) {
		s.mu.Lock()
		s.state = SessionIdle
		s.mu.Unlock()
	}
	return pending, err
}
