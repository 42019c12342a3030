package app

import (
	"context"

	"github.com/google/uuid"

	"gemcanvas/internal/ai"
	"gemcanvas/internal/model"
)

// Gateway is the generative model behind every Gem.
type Gateway interface {
	CompleteChat(ctx context.Context, prompt string, history []model.Message, systemInstruction string, knowledgeURLs []string) (string, error)
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
	SynthesizeCanvas(ctx context.Context, history []model.Message, systemInstruction, currentSignature string) (ai.CanvasResult, error)
}

type GemStore interface {
	LoadGems(ctx context.Context) ([]*model.Gem, error)
	SaveGems(ctx context.Context, gems []*model.Gem) error
}

type GroupStore interface {
	LoadGroups(ctx context.Context) ([]model.KnowledgeBaseGroup, error)
	SaveGroups(ctx context.Context, groups []model.KnowledgeBaseGroup) error
}

// EventPublisher receives archive journal entries.
type EventPublisher interface {
	Publish(ctx context.Context, entry model.JournalEntry) error
}

// Confirmer approves destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

var (
	AlwaysConfirm = ConfirmFunc(func(context.Context, string) bool { return true })
	NeverConfirm  = ConfirmFunc(func(context.Context, string) bool { return false })
)

func confirmed(ctx context.Context, c Confirmer, prompt string) bool {
	if c == nil {
		return false
	}
	return c.Confirm(ctx, prompt)
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// UnavailableGateway fails every call with Err. It stands in while the
// gateway is not configured.
type UnavailableGateway struct {
	Err error
}

func (g UnavailableGateway) CompleteChat(context.Context, string, []model.Message, string, []string) (string, error) {
	return "", g.Err
}

func (g UnavailableGateway) SynthesizeSpeech(context.Context, string) (string, error) {
	return "", g.Err
}

func (g UnavailableGateway) SynthesizeCanvas(context.Context, []model.Message, string, string) (ai.CanvasResult, error) {
	return nil, g.Err
}
