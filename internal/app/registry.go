package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

const DeleteGemPrompt = "Are you sure you want to delete this Gem? This cannot be undone."

// GemRegistry owns the Gem collection. Every mutation writes the whole
// collection back to the store before returning.
type GemRegistry struct {
	mu    sync.RWMutex
	store GemStore
	gems  []*model.Gem
	log   *logger.Logger
	now   func() time.Time
}

func NewGemRegistry(ctx context.Context, store GemStore, log *logger.Logger) (*GemRegistry, error) {
	gems, err := store.LoadGems(ctx)
	if err != nil {
		return nil, err
	}
	return &GemRegistry{
		store: store,
		gems:  gems,
		log:   log.With("component", "gem_registry"),
		now:   time.Now,
	}, nil
}

func (r *GemRegistry) Create(ctx context.Context, persona model.Persona) (*model.Gem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gem := &model.Gem{
		ID:                   newID("gem"),
		Name:                 persona.Name,
		StudentName:          persona.StudentName,
		SystemInstruction:    persona.SystemInstruction,
		VisualSignature:      model.RandomVisualSignature(),
		KnowledgeBaseGroupID: persona.KnowledgeBaseGroupID,
		ChatHistory:          []model.Message{},
		Canvases:             []model.ConnectionCanvas{},
		CreatedAt:            r.now(),
	}
	r.gems = append(r.gems, gem)
	return gem.Clone(), r.persist(ctx)
}

// Update merges the patch into the Gem. An unknown id returns nil, nil.
func (r *GemRegistry) Update(ctx context.Context, id string, patch model.PersonaPatch) (*model.Gem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gem := r.find(id)
	if gem == nil {
		return nil, nil
	}
	gem.ApplyPatch(patch)
	return gem.Clone(), r.persist(ctx)
}

// Delete removes the Gem after the confirmer approves. It reports whether a
// Gem was removed; declining returns ErrNotConfirmed.
func (r *GemRegistry) Delete(ctx context.Context, id string, confirmer Confirmer) (bool, error) {
	if !confirmed(ctx, confirmer, DeleteGemPrompt) {
		return false, ErrNotConfirmed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return false, nil
	}
	r.gems = append(r.gems[:idx], r.gems[idx+1:]...)
	return true, r.persist(ctx)
}

// ReplaceHistory swaps the Gem's chat history for the given one.
func (r *GemRegistry) ReplaceHistory(ctx context.Context, id string, history []model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gem := r.find(id)
	if gem == nil {
		return ErrGemNotFound
	}
	gem.ChatHistory = model.CloneMessages(history)
	return r.persist(ctx)
}

// CommitCanvas archives the canvas, adopts a valid proposed signature and
// clears the chat history.
func (r *GemRegistry) CommitCanvas(ctx context.Context, id string, canvas model.ConnectionCanvas) (*model.Gem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gem := r.find(id)
	if gem == nil {
		return nil, ErrGemNotFound
	}
	gem.Canvases = append(gem.Canvases, canvas)
	if model.IsVisualSignature(canvas.ProposedVisualSignature) {
		gem.VisualSignature = canvas.ProposedVisualSignature
	}
	gem.ChatHistory = []model.Message{}
	return gem.Clone(), r.persist(ctx)
}

func (r *GemRegistry) Get(id string) *model.Gem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(id).Clone()
}

// List returns every Gem, newest first.
func (r *GemRegistry) List() []*model.Gem {
	r.mu.RLock()
	out := make([]*model.Gem, 0, len(r.gems))
	for _, g := range r.gems {
		out = append(out, g.Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Feed returns every archived canvas across all Gems, newest first.
func (r *GemRegistry) Feed() []model.FeedItem {
	r.mu.RLock()
	var out []model.FeedItem
	for _, g := range r.gems {
		for _, c := range g.Canvases {
			out = append(out, model.FeedItem{
				ConnectionCanvas: c,
				GemID:            g.ID,
				GemName:          g.Name,
				StudentName:      g.StudentName,
				GemSignature:     g.VisualSignature,
			})
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if out == nil {
		out = []model.FeedItem{}
	}
	return out
}

func (r *GemRegistry) index(id string) int {
	for i, g := range r.gems {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (r *GemRegistry) find(id string) *model.Gem {
	if idx := r.index(id); idx >= 0 {
		return r.gems[idx]
	}
	return nil
}

// persist must be called with the write lock held.
func (r *GemRegistry) persist(ctx context.Context) error {
	if err := r.store.SaveGems(ctx, r.gems); err != nil {
		r.log.Error("persist gems failed", "error", err)
		return fmt.Errorf("persist gems failed: %w", err)
	}
	return nil
}
