package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
)

const DeleteKnowledgeBasePrompt = "Are you sure you want to delete this knowledge base? Gems using it will revert to a general search."

// KnowledgeRegistry owns the knowledge-base groups.
type KnowledgeRegistry struct {
	mu     sync.RWMutex
	store  GroupStore
	groups []model.KnowledgeBaseGroup
	log    *logger.Logger
}

func NewKnowledgeRegistry(ctx context.Context, store GroupStore, log *logger.Logger) (*KnowledgeRegistry, error) {
	groups, err := store.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}
	return &KnowledgeRegistry{
		store:  store,
		groups: groups,
		log:    log.With("component", "knowledge_registry"),
	}, nil
}

// Save inserts the group, or replaces the one with the same id. An empty id
// creates a new group.
func (r *KnowledgeRegistry) Save(ctx context.Context, group model.KnowledgeBaseGroup) (model.KnowledgeBaseGroup, error) {
	group.ID = strings.TrimSpace(group.ID)
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return model.KnowledgeBaseGroup{}, ErrInvalidInput
	}
	group.URLs = model.NormalizeURLs(group.URLs)

	r.mu.Lock()
	defer r.mu.Unlock()

	if group.ID == "" {
		group.ID = newID("group")
	}
	if idx := r.index(group.ID); idx >= 0 {
		r.groups[idx] = group
	} else {
		r.groups = append(r.groups, group)
	}
	return group.Clone(), r.persist(ctx)
}

// SaveFromText is Save with the URLs given one per line.
func (r *KnowledgeRegistry) SaveFromText(ctx context.Context, id, name, urlsText string) (model.KnowledgeBaseGroup, error) {
	return r.Save(ctx, model.KnowledgeBaseGroup{ID: id, Name: name, URLs: model.ParseURLList(urlsText)})
}

// Delete removes the group once confirmed. Gems that reference it keep the
// id and fall back to a general search.
func (r *KnowledgeRegistry) Delete(ctx context.Context, id string, confirmer Confirmer) (bool, error) {
	if !confirmed(ctx, confirmer, DeleteKnowledgeBasePrompt) {
		return false, ErrNotConfirmed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return false, nil
	}
	r.groups = append(r.groups[:idx], r.groups[idx+1:]...)
	return true, r.persist(ctx)
}

func (r *KnowledgeRegistry) Resolve(id string) (model.KnowledgeBaseGroup, bool) {
	if id == "" {
		return model.KnowledgeBaseGroup{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.index(id); idx >= 0 {
		return r.groups[idx].Clone(), true
	}
	return model.KnowledgeBaseGroup{}, false
}

func (r *KnowledgeRegistry) List() []model.KnowledgeBaseGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.KnowledgeBaseGroup, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g.Clone())
	}
	return out
}

func (r *KnowledgeRegistry) index(id string) int {
	for i, g := range r.groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (r *KnowledgeRegistry) persist(ctx context.Context) error {
	if err := r.store.SaveGroups(ctx, r.groups); err != nil {
		r.log.Error("persist knowledge bases failed", "error", err)
		return fmt.Errorf("persist knowledge bases failed: %w", err)
	}
	return nil
}
