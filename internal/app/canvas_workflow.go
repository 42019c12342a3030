package app

import (
	"context"
	"sync"
	"time"

	"gemcanvas/internal/ai"
	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

type CanvasState string

const (
	CanvasBrowsing   CanvasState = "browsing"
	CanvasGenerating CanvasState = "generating"
	CanvasReviewing  CanvasState = "reviewing"
)

// PendingCanvas is a generated canvas waiting for the user's verdict.
type PendingCanvas struct {
	GemID           string                 `json:"gemId"`
	GemName         string                 `json:"gemName"`
	StudentName     string                 `json:"studentName"`
	VisualSignature string                 `json:"visualSignature"`
	Canvas          model.ConnectionCanvas `json:"canvas"`
}

// CanvasWorkflow turns a finished session into a canvas and holds it for
// review. Only one canvas is generated or reviewed at a time.
type CanvasWorkflow struct {
	mu      sync.Mutex
	gems    *GemRegistry
	gateway Gateway
	log     *logger.Logger
	now     func() time.Time

	busy    bool
	busyGem string
	pending *PendingCanvas
}

func NewCanvasWorkflow(gems *GemRegistry, gateway Gateway, log *logger.Logger) *CanvasWorkflow {
	return &CanvasWorkflow{
		gems:    gems,
		gateway: gateway,
		log:     log.With("component", "canvas_workflow"),
		now:     time.Now,
	}
}

// BeginGeneration saves the session history and asks the gateway for a
// canvas. On success the canvas is held for review.
func (w *CanvasWorkflow) BeginGeneration(ctx context.Context, gem *model.Gem, history []model.Message) (*PendingCanvas, error) {
	w.mu.Lock()
	if w.busy || w.pending != nil {
		w.mu.Unlock()
		return nil, ErrCanvasBusy
	}
	w.busy = true
	w.busyGem = gem.ID
	w.mu.Unlock()

	pending, err := w.generate(ctx, gem, history)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	w.busyGem = ""
	if err != nil {
		return nil, err
	}
	w.pending = pending
	out := *pending
	return &out, nil
}

func (w *CanvasWorkflow) generate(ctx context.Context, gem *model.Gem, history []model.Message) (*PendingCanvas, error) {
	if err := w.gems.ReplaceHistory(ctx, gem.ID, history); err != nil {
		w.log.Warn("save history before canvas failed", "gem_id", gem.ID, "error", err)
	}

	result, err := w.gateway.SynthesizeCanvas(ctx, history, gem.SystemInstruction, gem.VisualSignature)
	if err != nil {
		w.log.Error("canvas generation failed", "gem_id", gem.ID, "error", err)
		return nil, ErrCanvasFailed
	}
	if failure, ok := result.(ai.CanvasParseFailure); ok {
		w.log.Warn("canvas response was not valid json", "gem_id", gem.ID, "raw_len", len(failure.RawText))
	}

	content, practice, proposed := ai.CanvasFields(result)
	if !model.IsVisualSignature(proposed) || proposed == gem.VisualSignature {
		proposed = ""
	}
	return &PendingCanvas{
		GemID:           gem.ID,
		GemName:         gem.Name,
		StudentName:     gem.StudentName,
		VisualSignature: gem.VisualSignature,
		Canvas: model.ConnectionCanvas{
			ID:                      newID("canvas"),
			CreatedAt:               w.now(),
			Content:                 content,
			ProposedVisualSignature: proposed,
			PersonalizedPractice:    practice,
		},
	}, nil
}

// Accept archives the canvas under review into its Gem.
func (w *CanvasWorkflow) Accept(ctx context.Context, gemID, canvasID string) (*model.Gem, *PendingCanvas, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.pending
	if p == nil || p.GemID != gemID || p.Canvas.ID != canvasID {
		return nil, nil, ErrNoPendingCanvas
	}
	w.pending = nil
	gem, err := w.gems.CommitCanvas(ctx, p.GemID, p.Canvas)
	return gem, p, err
}

// Discard drops the canvas under review. The Gem keeps its history.
func (w *CanvasWorkflow) Discard() (*PendingCanvas, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		return nil, ErrNoPendingCanvas
	}
	p := w.pending
	w.pending = nil
	return p, nil
}

func (w *CanvasWorkflow) Pending() (*PendingCanvas, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return nil, false
	}
	out := *w.pending
	return &out, true
}

// Holds reports whether the Gem's canvas is being generated or reviewed.
func (w *CanvasWorkflow) Holds(gemID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy && w.busyGem == gemID {
		return true
	}
	return w.pending != nil && w.pending.GemID == gemID
}

func (w *CanvasWorkflow) State() CanvasState {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.busy:
		return CanvasGenerating
	case w.pending != nil:
		return CanvasReviewing
	default:
		return CanvasBrowsing
	}
}
